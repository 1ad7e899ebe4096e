package api

import "fmt"

type Environment string

const (
	LOCAL Environment = "LOCAL"
	PROD  Environment = "PROD"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case LOCAL:
		return LOCAL, nil
	case PROD:
		return PROD, nil
	default:
		return "", fmt.Errorf("unknown environment: %q", s)
	}
}
