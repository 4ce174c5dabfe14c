package main

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// promptAddress asks for the wallet address interactively.
func promptAddress() (string, error) {
	var address string
	prompt := &survey.Input{
		Message: "STX Address:",
		Help:    "Enter the STX wallet address",
	}
	err := survey.AskOne(prompt, &address, survey.WithValidator(func(val interface{}) error {
		if strings.TrimSpace(val.(string)) == "" {
			return errors.New("address cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(address), nil
}
