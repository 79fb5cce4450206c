package meetingsim

// HTTP status code constants.
const (
	StatusOK = 200
)

// Reporting constants.
const (
	PercentageMultiplier = 100
)

// Activity type names understood by the engine.
const (
	rolePresidente = "presidente"
	roleLector     = "lector"
	roleOracion    = "oracion"
	roleSMM        = "seamos_mejores_maestros"
	rolePublicador = "publicador"
	roleGeneric    = "generic"
)
