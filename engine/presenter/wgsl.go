package presenter

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// errShaderReflection is wrapped by every failure to read the blit shader's interface.
var errShaderReflection = errors.New("shader reflection failed")

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension.
var wgslSampledTextureMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_cube":     wgpu.TextureViewDimensionCube,
	"texture_depth_2d": wgpu.TextureViewDimension2D,
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their wgpu texture sample type.
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding, optional address space, variable name and type from
	// declarations like: @group(0) @binding(0) var frame_texture: texture_2d<f32>;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// shaderInterface is what the presenter needs to know about a WGSL program to build its pipeline.
type shaderInterface struct {
	vertexEntry   string
	fragmentEntry string
	// bindings of group 0 sorted by binding index, keyed to the variable names in names.
	bindings []wgpu.BindGroupLayoutEntry
	names    []string
}

// reflectShader reads the entry points and the group 0 texture and sampler bindings of a WGSL program.
// Every binding is visible to the fragment stage only.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - shaderInterface: the entry points and layout entries
//   - error: error if an entry point is missing or a binding is not a texture or sampler in group 0
func reflectShader(source string) (shaderInterface, error) {
	cleaned := stripComments(source)

	var si shaderInterface
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		si.vertexEntry = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		si.fragmentEntry = m[1]
	}
	if si.vertexEntry == "" || si.fragmentEntry == "" {
		return shaderInterface{}, fmt.Errorf("%w: missing @vertex or @fragment entry point", errShaderReflection)
	}

	type decl struct {
		entry wgpu.BindGroupLayoutEntry
		name  string
	}
	var decls []decl
	for _, match := range bindingDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace, name, typeName := match[3], match[4], strings.TrimSpace(match[5])
		if addressSpace != "" {
			return shaderInterface{}, fmt.Errorf("%w: %s is a %s buffer", errShaderReflection, name, addressSpace)
		}
		if group != 0 {
			return shaderInterface{}, fmt.Errorf("%w: %s is in group %d", errShaderReflection, name, group)
		}

		entry, ok := classifyBinding(uint32(binding), typeName)
		if !ok {
			return shaderInterface{}, fmt.Errorf("%w: %s has unsupported type %s", errShaderReflection, name, typeName)
		}
		decls = append(decls, decl{entry: entry, name: name})
	}

	slices.SortFunc(decls, func(a, b decl) int {
		return int(a.entry.Binding) - int(b.entry.Binding)
	})
	for _, d := range decls {
		si.bindings = append(si.bindings, d.entry)
		si.names = append(si.names, d.name)
	}
	return si, nil
}

// classifyBinding builds the layout entry for a sampler or sampled texture type.
//
// Parameters:
//   - binding: the binding index
//   - typeName: the WGSL type, e.g. "texture_2d<f32>" or "sampler"
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated entry
//   - bool: false for any other type
func classifyBinding(binding uint32, typeName string) (wgpu.BindGroupLayoutEntry, bool) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
	}

	switch {
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		return entry, true
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		return entry, true
	case strings.HasPrefix(typeName, "texture_depth_"):
		dim, ok := wgslSampledTextureMap[typeName]
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = dim
		return entry, ok
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		dim, ok := wgslSampledTextureMap[base]
		sampleType, known := wgslSampleTypeMap[param]
		entry.Texture.ViewDimension = dim
		entry.Texture.SampleType = sampleType
		return entry, ok && known
	}
	return entry, false
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// stripComments removes line comments and nested block comments from WGSL source.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
