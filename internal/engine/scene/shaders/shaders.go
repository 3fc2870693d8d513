// Package shaders holds the GLSL sources for the room renderer.
package shaders

// RoomVertexShader transforms room vertices laid out as position, texture
// coordinate, lightmap coordinate.
const RoomVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec2 aLightmapCoord;

uniform mat4 uViewProj;

out vec2 vTexCoord;
out vec2 vLightmapCoord;

void main() {
    vTexCoord = aTexCoord;
    vLightmapCoord = aLightmapCoord;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

// RoomFragmentShader shades a surface from its lightmap. In bake mode the
// output is the radiance the hemicube sees: emission plus reflected light,
// untextured and unclamped.
const RoomFragmentShader = `
#version 410 core

in vec2 vTexCoord;
in vec2 vLightmapCoord;

uniform sampler2D uTexture;
uniform sampler2D uLightmap;
uniform float uEmissive;
uniform float uAlbedo;
uniform bool uBake;

out vec4 FragColor;

void main() {
    vec3 light = texture(uLightmap, vLightmapCoord).rgb;
    if (uBake) {
        FragColor = vec4(vec3(uEmissive) + uAlbedo * light, 1.0);
        return;
    }
    vec3 albedo = texture(uTexture, vTexCoord).rgb;
    FragColor = vec4(albedo * min(light + vec3(uEmissive), vec3(1.0)), 1.0);
}
`
