package gpu

import (
	"strings"

	"github.com/gogpu/splatview/maskexpr"
)

// maskKernelTemplate is the WGSL compute kernel evaluating one mask
// expression over all point positions. The %EXPR% placeholder receives
// the boolean expression over shape_contains calls; the Shape struct
// layout matches splatview.ShapePod field for field.
const maskKernelTemplate = `
struct Params {
    point_count: u32,
    _pad0: u32,
    _pad1: u32,
    _pad2: u32,
}

struct Shape {
    kind: u32,
    _pad0: u32,
    _pad1: u32,
    _pad2: u32,
    pos: vec3<f32>,
    rot: vec4<f32>,
    scale: vec3<f32>,
    color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> shapes: array<Shape>;
@group(0) @binding(2) var<storage, read> positions: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read_write> mask_bits: array<atomic<u32>>;

fn rotate_inv(q: vec4<f32>, v: vec3<f32>) -> vec3<f32> {
    let c = vec3<f32>(-q.x, -q.y, -q.z);
    let t = cross(c, v) * 2.0;
    return v + t * q.w + cross(c, t);
}

fn shape_contains(i: u32, p: vec3<f32>) -> bool {
    let s = shapes[i];
    if (s.scale.x == 0.0 || s.scale.y == 0.0 || s.scale.z == 0.0) {
        return false;
    }
    let local = rotate_inv(s.rot, p - s.pos) / s.scale;
    if (s.kind == 0u) {
        return abs(local.x) <= 1.0 && abs(local.y) <= 1.0 && abs(local.z) <= 1.0;
    }
    return dot(local, local) <= 1.0;
}

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.point_count) {
        return;
    }
    let p = positions[i].xyz;
    let inside = %EXPR%;
    if (inside) {
        atomicOr(&mask_bits[i / 32u], 1u << (i % 32u));
    }
}
`

// KernelSource returns the WGSL kernel for one mask expression. A nil
// expression selects every point.
func KernelSource(op *maskexpr.Op) string {
	return strings.Replace(maskKernelTemplate, "%EXPR%", maskexpr.WGSLExpr(op), 1)
}
