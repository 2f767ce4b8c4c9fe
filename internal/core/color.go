package core

// Color is the drawing role of a screen cell. Renderers map each role to a
// terminal color, so a skin can recolor the arena without touching game code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorHUD
	ColorDanger // low health, defeat banner
	ColorPlayer
	ColorAlly
	ColorEnemy
	ColorHeavy
	ColorBoss
	ColorShot   // friendly projectiles
	ColorFlak   // hostile projectiles
	ColorShield // any shielded plane
	ColorSky
	ColorBanner
	ColorVictory
)

// NumColors is the number of drawing roles.
const NumColors = int(ColorVictory) + 1
