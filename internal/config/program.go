package config

import (
	"errors"
	"fmt"
	"time"
)

// Program file keys.
const (
	KeyWelcomeDuration = "WELCOME_VIDEO_DURATION"
	KeyAdInterval      = "ADS_INBETWEEN_MOVIES_TIME"
	KeyWelcomeTextSize = "WELCOME_VIDEO_TEXT_SIZE"
	KeyOverlayTextSize = "OPERATOR_PHONE_DISPLAY_TEXT_SIZE"
)

const (
	defaultWelcomeSeconds   = 5
	defaultAdIntervalMinute = 20
	defaultProgramTextSize  = 36
)

// Program is the typed view of the program configuration file.
type Program struct {
	// WelcomeDuration is the length of the generated welcome clip.
	WelcomeDuration time.Duration
	// AdInterval is the movie chunk length between ad breaks.
	AdInterval time.Duration
	// WelcomeTextSize is the font size of welcome lines.
	WelcomeTextSize int
	// OverlayTextSize is the font size of the whole-program watermark.
	OverlayTextSize int
}

// DefaultProgram returns the settings used when every key is absent.
func DefaultProgram() Program {
	return ProgramFromValues(Values{})
}

// ProgramFromValues applies defaults to parsed values. The ad interval is
// stored in minutes.
func ProgramFromValues(v Values) Program {
	return Program{
		WelcomeDuration: v.Seconds(KeyWelcomeDuration, defaultWelcomeSeconds, 1),
		AdInterval:      v.Seconds(KeyAdInterval, defaultAdIntervalMinute, 60),
		WelcomeTextSize: int(v.Int(KeyWelcomeTextSize, defaultProgramTextSize)),
		OverlayTextSize: int(v.Int(KeyOverlayTextSize, defaultProgramTextSize)),
	}
}

// LoadProgram reads and validates the program configuration file.
func LoadProgram(path string) (Program, error) {
	values, err := LoadValues(path)
	if err != nil {
		return Program{}, err
	}
	program := ProgramFromValues(values)
	if err := program.Validate(); err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// Validate rejects settings ffmpeg cannot act on.
func (p Program) Validate() error {
	if p.WelcomeDuration <= 0 {
		return errors.New(KeyWelcomeDuration + " must be positive")
	}
	if p.AdInterval < time.Second {
		return errors.New(KeyAdInterval + " must be at least one second")
	}
	if p.WelcomeTextSize <= 0 {
		return errors.New(KeyWelcomeTextSize + " must be positive")
	}
	if p.OverlayTextSize <= 0 {
		return errors.New(KeyOverlayTextSize + " must be positive")
	}
	return nil
}
