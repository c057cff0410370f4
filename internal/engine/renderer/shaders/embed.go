// Package shaders embeds the GLSL sources of the scene program.
package shaders

import _ "embed"

//go:embed scene.vert
var SceneVertex string

//go:embed scene.frag
var SceneFragment string
