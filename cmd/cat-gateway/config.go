package main

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"strings"
	"time"
)

// Config stores every parameter the gateway binary needs. As in the rest
// of the pack, they're lumped into one struct and read with encoding/json.
// No defaults are assumed.
type Config struct {
	ListenAddress string

	Redis struct {
		Addr string
	}

	ASNResolver struct {
		BaseURL string
	}

	SigningKey ConfigSecret

	EvaluateASNBlocks bool
	SubjectRequired   bool

	RequestTimeout ConfigDuration

	DebugAddr string
}

// ConfigDuration is an alias for time.Duration that unmarshals from a
// duration string rather than nanoseconds.
type ConfigDuration struct {
	time.Duration
}

var ErrDurationMustBeString = errors.New("cannot JSON unmarshal something other than a string into a ConfigDuration")

func (d *ConfigDuration) UnmarshalJSON(b []byte) error {
	s := ""
	if err := json.Unmarshal(b, &s); err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return ErrDurationMustBeString
		}
		return err
	}
	dd, err := time.ParseDuration(s)
	d.Duration = dd
	return err
}

// ConfigSecret represents a string-valued config field. It may be given
// directly, or, if it starts with "secret:", its value is read from the
// file path that follows, with trailing newlines trimmed.
type ConfigSecret string

var errSecretMustBeString = errors.New("cannot JSON unmarshal something other than a string into a ConfigSecret")

const secretPrefix = "secret:"

func (d *ConfigSecret) UnmarshalJSON(b []byte) error {
	s := ""
	if err := json.Unmarshal(b, &s); err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return errSecretMustBeString
		}
		return err
	}
	if !strings.HasPrefix(s, secretPrefix) {
		*d = ConfigSecret(s)
		return nil
	}
	contents, err := ioutil.ReadFile(s[len(secretPrefix):])
	if err != nil {
		return err
	}
	*d = ConfigSecret(strings.TrimRight(string(contents), "\n"))
	return nil
}
