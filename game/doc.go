// Package game holds plain data shared by the guest SDK and the host: status
// codes, directions and their packed wire form, body parts, colors, visual
// styles and object ids.
//
// Nothing here touches linear memory or wazero, so the package compiles for
// both GOOS=wasip1 guests and native hosts.
package game
