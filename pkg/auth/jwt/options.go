package jwt

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains the JWT authenticator configuration.
type Options struct {
	// Key is the HMAC signing key. Must be at least 32 characters.
	Key string `json:"key" mapstructure:"key"`

	// SigningMethod is the HMAC algorithm: HS256, HS384 or HS512.
	SigningMethod string `json:"signing-method" mapstructure:"signing-method"`

	// Issuer is the token issuer claim.
	Issuer string `json:"issuer" mapstructure:"issuer"`

	// Expired is the token lifetime.
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// MaxRefresh is the window after issue during which a token may be
	// refreshed. Revoked tokens are blacklisted until this window closes.
	MaxRefresh time.Duration `json:"max-refresh" mapstructure:"max-refresh"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		SigningMethod: "HS256",
		Issuer:        "insight",
		Expired:       2 * time.Hour,
		MaxRefresh:    24 * time.Hour,
	}
}

// AddFlags adds JWT flags to the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key, "JWT signing key (min 32 characters)")
	fs.StringVar(&o.SigningMethod, "jwt.signing-method", o.SigningMethod, "JWT signing method: HS256, HS384, HS512")
	fs.StringVar(&o.Issuer, "jwt.issuer", o.Issuer, "JWT issuer claim")
	fs.DurationVar(&o.Expired, "jwt.expired", o.Expired, "JWT token lifetime")
	fs.DurationVar(&o.MaxRefresh, "jwt.max-refresh", o.MaxRefresh, "JWT refresh window")
}

// Validate checks the options.
func (o *Options) Validate() []error {
	var errs []error

	if len(o.Key) < 32 {
		errs = append(errs, fmt.Errorf("jwt.key must be at least 32 characters, got %d", len(o.Key)))
	}

	switch o.SigningMethod {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported jwt.signing-method %q", o.SigningMethod))
	}

	if o.Expired <= 0 {
		errs = append(errs, fmt.Errorf("jwt.expired must be positive"))
	}
	if o.MaxRefresh < o.Expired {
		errs = append(errs, fmt.Errorf("jwt.max-refresh must not be shorter than jwt.expired"))
	}

	return errs
}
