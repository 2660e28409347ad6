package domain

const (
	LanguagesAll      = "all"
	LanguagesSelected = "selected"

	DefaultReviewsPerRequest = 100
	DefaultCountry           = "US"
)

// Config is the connector configuration supplied by the host.
type Config struct {
	AppID                string          `json:"app_id" yaml:"app_id" validate:"required"`
	Languages            LanguagesConfig `json:"languages" yaml:"languages"`
	StartDate            string          `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02"`
	TimeoutMilliseconds  int             `json:"timeout_milliseconds" yaml:"timeout_milliseconds" validate:"gte=0"`
	MaxReviewsPerRequest int             `json:"max_reviews_per_request" yaml:"max_reviews_per_request" validate:"gte=0,lte=10000"`
	Country              string          `json:"country,omitempty" yaml:"country,omitempty" validate:"omitempty,len=2"`
}

type LanguagesConfig struct {
	Type     string   `json:"type" yaml:"type" validate:"required,oneof=all selected"`
	Selected []string `json:"selected,omitempty" yaml:"selected,omitempty" validate:"required_if=Type selected,dive,required"`
}

// WithDefaults fills optional fields left empty in the file.
func (c Config) WithDefaults() Config {
	if c.MaxReviewsPerRequest == 0 {
		c.MaxReviewsPerRequest = DefaultReviewsPerRequest
	}
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	return c
}

// FieldError names one invalid configuration key.
type FieldError struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ErrorText string `json:"error_text"`
}

func (e FieldError) Error() string { return e.ErrorText }
