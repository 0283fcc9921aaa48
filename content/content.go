// Package content embeds the static game data shipped with the binaries.
package content

import "embed"

// Brawlers holds one YAML definition per brawler under "brawlers/".
//
//go:embed brawlers/*.yaml
var Brawlers embed.FS

// Policies holds the Lua house policies under "policies/". The default policy
// is policies/house.lua.
//
//go:embed policies/*.lua
var Policies embed.FS
