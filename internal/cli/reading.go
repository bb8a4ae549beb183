package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/trapwatch-service/internal/integrity"
	"github.com/PratikDhanave/trapwatch-service/internal/models"
)

// SecretEnv is consulted when --secret is not given.
const SecretEnv = "TRAP_SHARED_SECRET"

type readingFlags struct {
	trapID   string
	trapType string
	gps      string
	eggs     int
	barangay string
	secret   string
}

func (f *readingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.trapID, "trap-id", "", "trap identifier (required)")
	cmd.Flags().StringVar(&f.trapType, "trap-type", "ovitrap", "trap type")
	cmd.Flags().StringVar(&f.gps, "gps", "", `location as "lat,lng" (required)`)
	cmd.Flags().IntVar(&f.eggs, "eggs", 0, "egg count")
	cmd.Flags().StringVar(&f.barangay, "barangay", "", "locality label")
	cmd.Flags().StringVar(&f.secret, "secret", "", "shared secret (default $"+SecretEnv+")")
	_ = cmd.MarkFlagRequired("trap-id")
	_ = cmd.MarkFlagRequired("gps")
}

func (f *readingFlags) verifier() (*integrity.Verifier, error) {
	secret := f.secret
	if secret == "" {
		secret = os.Getenv(SecretEnv)
	}
	if secret == "" {
		return nil, errors.New("shared secret required: pass --secret or set " + SecretEnv)
	}
	return integrity.NewVerifier(secret), nil
}

// signed builds a submission carrying the digest for the flagged reading.
func (f *readingFlags) signed() (models.SubmitRequest, error) {
	if f.eggs < 0 {
		return models.SubmitRequest{}, errors.New("--eggs must be non-negative")
	}
	v, err := f.verifier()
	if err != nil {
		return models.SubmitRequest{}, err
	}
	return models.SubmitRequest{
		TrapID:   f.trapID,
		TrapType: f.trapType,
		GPS:      f.gps,
		EggCount: f.eggs,
		Barangay: f.barangay,
		SHA256:   v.Digest(f.trapID, f.trapType, f.gps, f.eggs),
	}, nil
}
