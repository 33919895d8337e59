package config

// EnvPrefix is passed to envconfig; variables are fully qualified in struct
// tags so the prefix itself stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
