package utils

const (
	// ActivationCodeKey is the key for the activation code used in routing parameters.
	ActivationCodeKey = "activationCode"
)
