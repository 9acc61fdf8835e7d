package internal

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`
}
