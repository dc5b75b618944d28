package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	StorageConfig struct {
		Driver   string // file (default) | redis | memory
		Dir      string
		RedisURL string
	}

	SandboxConfig struct {
		Address                   string
		SecretKey                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		SeedPassword              string
	}

	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		SignInPath   string
		RollbarToken string

		SearchDebounce time.Duration
		PollInterval   time.Duration

		API     APIConfig
		Storage StorageConfig
		Sandbox SandboxConfig
	}
)

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file, then the environment.
func NewConfig(workDir ...string) *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Masomo Admin")
	conf.SetDefault("build", "dev")
	conf.SetDefault("signInPath", "/sign-in")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("search.debounce", 500*time.Millisecond)
	conf.SetDefault("poll.interval", 30*time.Second)
	conf.SetDefault("api.baseURL", "http://localhost:8000/api")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("storage.driver", "file")
	conf.SetDefault("storage.dir", defaultStorageDir())
	conf.SetDefault("storage.redisURL", "localhost:6379")
	conf.SetDefault("sandbox.address", ":8000")
	conf.SetDefault("sandbox.secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("sandbox.jwtExpirationDelta", 15*time.Minute)
	conf.SetDefault("sandbox.jwtRefreshExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("sandbox.shutdownTimeout", 5*time.Second)
	conf.SetDefault("sandbox.seedPassword", "Rahasia#123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "QA", "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := "."
	if len(workDir) > 0 && workDir[0] != "" {
		wd = workDir[0]
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:          conf.GetBool("debug"),
		TestMode:       conf.GetBool("testMode"),
		Env:            env,
		Build:          conf.GetString("build"),
		AppName:        conf.GetString("appName"),
		SignInPath:     conf.GetString("signInPath"),
		RollbarToken:   conf.GetString("rollbarToken"),
		SearchDebounce: conf.GetDuration("search.debounce"),
		PollInterval:   conf.GetDuration("poll.interval"),
		API: APIConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(conf.GetString("storage.driver")),
			Dir:      conf.GetString("storage.dir"),
			RedisURL: conf.GetString("storage.redisURL"),
		},
		Sandbox: SandboxConfig{
			Address:                   conf.GetString("sandbox.address"),
			SecretKey:                 conf.GetString("sandbox.secretKey"),
			JWTExpirationDelta:        conf.GetDuration("sandbox.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("sandbox.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           conf.GetDuration("sandbox.shutdownTimeout"),
			SeedPassword:              conf.GetString("sandbox.seedPassword"),
		},
	}
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "masomo-admin")
	}
	return ".masomo-admin"
}
