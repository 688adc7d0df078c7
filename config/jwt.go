package config

import "os"

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// JWTConfig holds the shared secret used to verify tokens issued by the
// identity service.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

var JWTSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultJWTSecret
	}
	JWTSecret = []byte(secret)
}

// SetJWT replaces the signing secret once the full configuration is loaded.
func SetJWT(cfg JWTConfig) {
	if cfg.Secret != "" {
		JWTSecret = []byte(cfg.Secret)
	}
}
