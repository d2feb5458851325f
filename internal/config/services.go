package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
)

// Services holds the base URLs of the remote collaborators. URLs are kept
// as configured; accessors normalise and validate them on use so a command
// only fails on the services it actually talks to.
type Services struct {
	LoginURL      string
	OCRURL        string
	InsightsURL   string
	Timeout       time.Duration
	AllowInsecure bool
}

// Config keys for the service URLs.
const (
	KeyLoginURL    = "services.login_url"
	KeyOCRURL      = "services.ocr_url"
	KeyInsightsURL = "services.insights_url"
)

// legacyEnv maps each URL key to the variable the web dashboard used.
var legacyEnv = map[string]string{
	KeyLoginURL:    "NEXT_PUBLIC_LOGIN_URL",
	KeyOCRURL:      "NEXT_PUBLIC_OCR_URL",
	KeyInsightsURL: "NEXT_PUBLIC_INSIGHTS_URL",
}

// LoadServices reads the service section from v. It follows this precedence:
// 1. Viper configuration (from config file or THESAURUS_ env vars)
// 2. The dashboard's NEXT_PUBLIC_* environment variables
func LoadServices(v *viper.Viper) Services {
	return Services{
		LoginURL:      lookupURL(v, KeyLoginURL),
		OCRURL:        lookupURL(v, KeyOCRURL),
		InsightsURL:   lookupURL(v, KeyInsightsURL),
		Timeout:       v.GetDuration("services.timeout"),
		AllowInsecure: v.GetBool("services.allow_insecure"),
	}
}

func lookupURL(v *viper.Viper, key string) string {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	return strings.TrimSpace(os.Getenv(legacyEnv[key]))
}

// Login returns the validated login service base URL.
func (s Services) Login() (string, error) {
	return s.ensure(KeyLoginURL, s.LoginURL)
}

// OCR returns the validated extraction service base URL.
func (s Services) OCR() (string, error) {
	return s.ensure(KeyOCRURL, s.OCRURL)
}

// Insights returns the validated insights service base URL.
func (s Services) Insights() (string, error) {
	return s.ensure(KeyInsightsURL, s.InsightsURL)
}

// Validate checks every configured URL at once.
func (s Services) Validate() error {
	for key, raw := range map[string]string{
		KeyLoginURL:    s.LoginURL,
		KeyOCRURL:      s.OCRURL,
		KeyInsightsURL: s.InsightsURL,
	} {
		if _, err := s.ensure(key, raw); err != nil {
			return err
		}
	}
	return nil
}

func (s Services) ensure(key, raw string) (string, error) {
	url := WithTrailingSlash(strings.TrimSpace(raw))
	if url == "" {
		return "", fmt.Errorf("%w: %s must be set", common.ErrMissingConfig, key)
	}
	if strings.HasPrefix(strings.ToLower(url), "http://") && !s.AllowInsecure {
		return "", fmt.Errorf("%w: %s is %s", common.ErrInsecureURL, key, url)
	}
	return url, nil
}

// WithTrailingSlash appends a slash unless value is empty or already has one.
func WithTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
