package renderer

import (
	"strings"

	"github.com/Faultbox/meshstage/internal/engine/renderer/shaders"
)

func containsUniform(name string) bool {
	for _, src := range []string{shaders.SceneVertex, shaders.SceneFragment} {
		for _, line := range strings.Split(src, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "uniform ") {
				continue
			}
			decl := strings.TrimSuffix(line, ";")
			field := decl[strings.LastIndex(decl, " ")+1:]
			if i := strings.IndexByte(field, '['); i >= 0 {
				field = field[:i]
			}
			if field == name {
				return true
			}
		}
	}
	return false
}
