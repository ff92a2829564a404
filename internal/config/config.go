package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		KeySeed    string `yaml:"key_seed"` // base64, 32 bytes (ed25519 seed)
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	// Shopify agrupa la integración con la plataforma externa.
	Shopify struct {
		// Admin OAuth (flujo de conexión de tiendas)
		APIKey       string `yaml:"api_key"`
		APISecret    string `yaml:"api_secret"`
		Scopes       string `yaml:"scopes"`
		RedirectBase string `yaml:"redirect_base"` // base del callback propio

		// Storefront (login/signup de clientes)
		Domain          string `yaml:"domain"` // tienda fija del marketplace
		StorefrontToken string `yaml:"storefront_token"`

		// Redirecciones post-callback
		SuccessRedirect string `yaml:"success_redirect"`
		ErrorRedirect   string `yaml:"error_redirect"`
	} `yaml:"shopify"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyEnv()

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "stocklink"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Shopify.SuccessRedirect == "" {
		c.Shopify.SuccessRedirect = "https://app.stocklink.dev/shopify?status=success"
	}
	if c.Shopify.ErrorRedirect == "" {
		c.Shopify.ErrorRedirect = "https://app.stocklink.dev/shopify?status=error"
	}

	return &c, nil
}

// applyEnv superpone variables de entorno sobre lo cargado del YAML.
func (c *Config) applyEnv() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("PG_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("PG_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_KEY_SEED"); ok {
		c.JWT.KeySeed = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	if v, ok := getEnvStr("SHOPIFY_API_KEY"); ok {
		c.Shopify.APIKey = v
	}
	if v, ok := getEnvStr("SHOPIFY_API_SECRET"); ok {
		c.Shopify.APISecret = v
	}
	if v, ok := getEnvStr("SHOPIFY_SCOPES"); ok {
		c.Shopify.Scopes = v
	}
	if v, ok := getEnvStr("SHOPIFY_REDIRECT_BASE"); ok {
		c.Shopify.RedirectBase = v
	}
	if v, ok := getEnvStr("SHOPIFY_DOMAIN"); ok {
		c.Shopify.Domain = v
	}
	if v, ok := getEnvStr("SHOPIFY_STOREFRONT_TOKEN"); ok {
		c.Shopify.StorefrontToken = v
	}
	if v, ok := getEnvStr("SHOPIFY_SUCCESS_REDIRECT"); ok {
		c.Shopify.SuccessRedirect = v
	}
	if v, ok := getEnvStr("SHOPIFY_ERROR_REDIRECT"); ok {
		c.Shopify.ErrorRedirect = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvInt("RATE_REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}
	if v, ok := getEnvStr("RATE_REDIS_PREFIX"); ok {
		c.Rate.Redis.Prefix = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
}

// MissingLinkKeys devuelve las claves faltantes para el flujo de conexión
// de tiendas (Admin OAuth). Vacío = configuración completa.
func (c *Config) MissingLinkKeys() []string {
	var missing []string
	if c.Shopify.APIKey == "" {
		missing = append(missing, "SHOPIFY_API_KEY")
	}
	if c.Shopify.APISecret == "" {
		missing = append(missing, "SHOPIFY_API_SECRET")
	}
	if c.Shopify.Scopes == "" {
		missing = append(missing, "SHOPIFY_SCOPES")
	}
	if c.Shopify.RedirectBase == "" {
		missing = append(missing, "SHOPIFY_REDIRECT_BASE")
	}
	if c.Storage.DSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	return missing
}

// MissingStorefrontKeys devuelve las claves faltantes para los flujos de
// login/signup por credenciales.
func (c *Config) MissingStorefrontKeys() []string {
	var missing []string
	if c.Shopify.Domain == "" {
		missing = append(missing, "SHOPIFY_DOMAIN")
	}
	if c.Shopify.StorefrontToken == "" {
		missing = append(missing, "SHOPIFY_STOREFRONT_TOKEN")
	}
	if c.Storage.DSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	return missing
}

// Validate reporta TODAS las claves requeridas faltantes, no solo la primera.
func (c *Config) Validate() error {
	missing := c.MissingLinkKeys()
	missing = append(missing, c.MissingStorefrontKeys()...)

	// de-dup conservando orden
	seen := map[string]struct{}{}
	var uniq []string
	for _, k := range missing {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	if len(uniq) > 0 {
		return fmt.Errorf("config: missing required keys: %s", strings.Join(uniq, ", "))
	}
	return nil
}

// AccessTTL parsea el TTL del access token.
func (c *Config) AccessTTL() time.Duration {
	return parseDur(c.JWT.AccessTTL, 15*time.Minute)
}

// RefreshTTL parsea el TTL del refresh token.
func (c *Config) RefreshTTL() time.Duration {
	return parseDur(c.JWT.RefreshTTL, 720*time.Hour)
}

// LoginWindow parsea la ventana del rate limit de login.
func (c *Config) LoginWindow() time.Duration {
	return parseDur(c.Rate.Login.Window, time.Minute)
}

func parseDur(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return def
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
