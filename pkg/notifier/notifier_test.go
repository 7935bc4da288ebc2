package notifier_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/notifier"
)

type sent struct {
	title, message string
}

func recorder(out *[]sent, err error) notifier.SendFunc {
	return func(title, message, icon string) error {
		*out = append(*out, sent{title, message})
		return err
	}
}

func TestNotifier_RunComplete(t *testing.T) {
	tests := []struct {
		name      string
		failed    bool
		wantTitle string
	}{
		{name: "clean", failed: false, wantTitle: "finished"},
		{name: "failures", failed: true, wantTitle: "finished with failures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []sent
			n := notifier.New(notifier.Config{Enabled: true}, logger.Discard(), notifier.WithSender(recorder(&got, nil)))

			n.NotifyRunComplete("3 attempted (3 success), 0 skipped", tt.failed)

			if len(got) != 1 {
				t.Fatalf("expected one notification, got %d", len(got))
			}
			if !strings.HasSuffix(got[0].title, tt.wantTitle) {
				t.Errorf("title = %q", got[0].title)
			}
			if got[0].message != "3 attempted (3 success), 0 skipped" {
				t.Errorf("message = %q", got[0].message)
			}
		})
	}
}

func TestNotifier_Disabled(t *testing.T) {
	var got []sent
	n := notifier.New(notifier.Config{Enabled: false}, logger.Discard(), notifier.WithSender(recorder(&got, nil)))

	n.NotifyRunComplete("done", true)
	n.NotifySetupFailure(errors.New("git clone failed"))

	if len(got) != 0 {
		t.Errorf("disabled notifier sent %d notifications", len(got))
	}
}

func TestNotifier_FallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	var got []sent
	log := logger.CreateLoggerWithOutput("info", &buf)
	n := notifier.New(notifier.Config{Enabled: true}, log, notifier.WithSender(recorder(&got, errors.New("no dbus"))))

	n.NotifySetupFailure(errors.New("git clone failed"))

	if !strings.Contains(buf.String(), "setup failed: git clone failed") {
		t.Errorf("expected log fallback, got %q", buf.String())
	}
}

func TestNotifier_Sound(t *testing.T) {
	tests := []struct {
		name   string
		sound  bool
		failed bool
		beeps  int
	}{
		{"failed run with sound", true, true, 1},
		{"clean run with sound", true, false, 0},
		{"failed run without sound", false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []sent
			beeps := 0
			n := notifier.New(notifier.Config{Enabled: true, Sound: tt.sound}, logger.Discard(),
				notifier.WithSender(recorder(&got, nil)),
				notifier.WithBeeper(func(freq float64, duration int) error {
					beeps++
					return nil
				}))

			n.NotifyRunComplete("2 attempted", tt.failed)

			if beeps != tt.beeps {
				t.Errorf("expected %d beeps, got %d", tt.beeps, beeps)
			}
		})
	}
}
