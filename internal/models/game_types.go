package models

type GameType string

const (
	GameTypeCrash     GameType = "crash"
	GameTypeMines     GameType = "mines"
	GameTypeLimbo     GameType = "limbo"
	GameTypeBlackjack GameType = "blackjack"
	GameTypeHiLo      GameType = "hilo"
	GameTypePlinko    GameType = "plinko"
	GameTypeWheel     GameType = "wheel"
	GameTypeKeno      GameType = "keno"
	GameTypePoker     GameType = "poker"
	GameTypeChicken   GameType = "chicken"
	GameTypePump      GameType = "pump"
	GameTypeDragon    GameType = "dragon"
)

var allGameTypes = map[GameType]bool{
	GameTypeCrash:     true,
	GameTypeMines:     true,
	GameTypeLimbo:     true,
	GameTypeBlackjack: true,
	GameTypeHiLo:      true,
	GameTypePoker:     true,
	GameTypePlinko:    true,
	GameTypeWheel:     true,
	GameTypeKeno:      true,
	GameTypeChicken:   true,
	GameTypePump:      true,
	GameTypeDragon:    true,
}

// Valid reports whether the game type belongs to the wire enum. Types without
// a validation rule are still part of the enum; the validator rejects their
// claims with a dedicated reason instead of treating them as unknown.
func (g GameType) Valid() bool {
	return allGameTypes[g]
}
