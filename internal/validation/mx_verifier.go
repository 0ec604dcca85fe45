package validation

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/truemail-rb/truemail-go"
)

// MXVerifier checks that the domain of an address accepts mail.
type MXVerifier struct {
	configuration *truemail.Configuration
}

// NewMXVerifier configures truemail for MX-only validation.
func NewMXVerifier(verifierEmail string) (*MXVerifier, error) {
	configuration, err := truemail.NewConfiguration(truemail.ConfigurationAttr{
		VerifierEmail:         verifierEmail,
		ValidationTypeDefault: "mx",
		SmtpFailFast:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("configure truemail: %w", err)
	}

	return &MXVerifier{configuration: configuration}, nil
}

func (v *MXVerifier) Verify(email string) bool {
	valid := truemail.IsValid(email, v.configuration)
	if !valid {
		log.WithField("email", email).Debug("MX lookup rejected address")
	}
	return valid
}
