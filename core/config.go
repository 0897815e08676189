package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine     string // sqlite | postgres
		Path       string // sqlite only
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	EmailConfig struct {
		DefaultFrom    mail.Address
		OfficeAddress  mail.Address
		SendgridAPIKey string
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		Database DatabaseConfig
		Email    EmailConfig

		// login gate; both optional, prompted for when empty
		Auth struct {
			Username string
			Password string
		}
		AdminPassword string

		Bonus struct {
			ExpiryWindowDays int
		}

		Log struct {
			Level  string
			Pretty bool
		}
		RollbarToken string
	}
)

// Address returns the host:port of a PostgreSQL database.
func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// IsSQLite reports whether the configured engine is the local single-file store.
func (c DatabaseConfig) IsSQLite() bool {
	return c.Engine == "" || c.Engine == "sqlite"
}

// NewConfig loads the configuration from defaults, config/escondite.yaml, config/.env.<env>
// and the environment, in that order of precedence (last wins).
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "El Escondite Inglés")
	v.SetDefault("build", "dev")
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.path", filepath.Join("db", "el_escondite_ingles.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "escondite")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", false)
	v.SetDefault("email.defaultFrom", "noreply@localhost")
	v.SetDefault("email.officeAddress", "")
	v.SetDefault("email.sendgridAPIKey", "")
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("adminPassword", "")
	v.SetDefault("bonus.expiryWindowDays", 7)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("rollbarToken", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := os.Getenv("ESCONDITE_HOME")
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "config.Getwd")
		}
		workDir = wd
	}
	v.SetDefault("workDir", workDir)

	// config/escondite.yaml is optional
	v.SetConfigName("escondite")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(workDir, "config"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "config.ReadInConfig")
		}
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  v.GetString("workDir"),
		Database: DatabaseConfig{
			Engine:     strings.ToLower(v.GetString("database.engine")),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		AdminPassword: v.GetString("adminPassword"),
		RollbarToken:  v.GetString("rollbarToken"),
	}
	if conf.Database.IsSQLite() && !filepath.IsAbs(conf.Database.Path) {
		conf.Database.Path = filepath.Join(conf.WorkDir, conf.Database.Path)
	}
	conf.Auth.Username = v.GetString("auth.username")
	conf.Auth.Password = v.GetString("auth.password")
	conf.Bonus.ExpiryWindowDays = v.GetInt("bonus.expiryWindowDays")
	conf.Log.Level = v.GetString("log.level")
	conf.Log.Pretty = v.GetBool("log.pretty")

	var err error
	if conf.Email.DefaultFrom, err = parseAddress(v.GetString("email.defaultFrom"), conf.AppName); err != nil {
		return nil, errors.Wrap(err, "config: email.defaultFrom")
	}
	if addr := v.GetString("email.officeAddress"); addr != "" {
		if conf.Email.OfficeAddress, err = parseAddress(addr, ""); err != nil {
			return nil, errors.Wrap(err, "config: email.officeAddress")
		}
	}
	conf.Email.SendgridAPIKey = v.GetString("email.sendgridAPIKey")

	return conf, nil
}

func parseAddress(s, defaultName string) (mail.Address, error) {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return mail.Address{}, err
	}
	if addr.Name == "" {
		addr.Name = defaultName
	}
	return *addr, nil
}
