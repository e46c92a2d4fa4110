// Command splatctl inspects mask expressions and re-exports splat
// models offline.
//
// Modes:
//
//	splatctl -expr "0 | 1 & 2" -shapes 3        print the parsed tree and WGSL
//	splatctl -in model.ply -out masked.ply ...  re-export with a mask baked in
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	splatview "github.com/gogpu/splatview"
	"github.com/gogpu/splatview/gaussian"
	"github.com/gogpu/splatview/maskexpr"
)

func main() {
	var (
		expr    = flag.String("expr", "", "mask expression over shape indices")
		shapes  = flag.Int("shapes", 0, "number of shapes the expression may reference")
		inPath  = flag.String("in", "", "input PLY to re-export (demo points when empty)")
		outPath = flag.String("out", "", "output PLY path")
		count   = flag.Int("count", 1000, "demo point count when no input is given")
	)
	flag.Parse()

	op, err := maskexpr.Parse(*expr)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}
	if err := op.ValidateShapes(*shapes); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	if op == nil {
		fmt.Println("expression: (empty, selects everything)")
	} else {
		fmt.Printf("expression: %s\n", op)
	}
	fmt.Printf("wgsl:       %s\n", maskexpr.WGSLExpr(op))

	if *outPath == "" {
		return
	}
	if *inPath != "" {
		log.Fatalf("PLY decoding is not supported yet; only demo export (-out without -in)")
	}

	if err := exportDemo(*outPath, *count, op, *shapes); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Exported %d points to %s", *count, *outPath)
}

// exportDemo writes a procedural point grid with the mask evaluated on
// the CPU, exercising the same filter the viewer export uses.
func exportDemo(path string, count int, op *maskexpr.Op, shapeCount int) error {
	points := demoPoints(count)
	bits := demoMask(points, op, shapeCount)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gaussian.WritePLY(f, points, nil, bits)
}

// demoPoints lays points on a line through the origin so masks with
// origin-centered shapes have something to select.
func demoPoints(count int) []gaussian.Point {
	points := make([]gaussian.Point, count)
	for i := range points {
		t := float32(i)/float32(count)*4 - 2
		points[i] = gaussian.Point{
			Pos:     [3]float32{t, t / 2, 0},
			ColorDC: [3]float32{0.5, 0.5, 0.5},
			Opacity: 1,
			Scale:   [3]float32{0.01, 0.01, 0.01},
			Rot:     [4]float32{1, 0, 0, 0},
		}
	}
	return points
}

// demoMask evaluates op over the points with shapeCount unit boxes
// spread along the x axis.
func demoMask(points []gaussian.Point, op *maskexpr.Op, shapeCount int) []uint32 {
	if op == nil {
		return nil
	}
	shapes := make([]splatview.Shape, shapeCount)
	for i := range shapes {
		s := splatview.NewShape()
		s.Pos = [3]float32{float32(i), 0, 0}
		shapes[i] = s
	}
	tree := maskexpr.Compile(op, splatview.Pods(shapes))

	bits := make([]uint32, gaussian.MaskWords(len(points)))
	for i, p := range points {
		if tree.Contains(p.Pos) {
			bits[i/32] |= 1 << (i % 32)
		}
	}
	return bits
}
