package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadFromEnv reads the first .env file found in paths (missing files are
// skipped) and then loads the process environment. Variables already set in
// the environment win over the file.
func LoadFromEnv(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{".env", "../../.env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return Load(FromEnviron())
}
