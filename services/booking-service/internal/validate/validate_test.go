package validate

import (
	"errors"
	"testing"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/errs"
)

type sample struct {
	ServiceID string `json:"serviceId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Notes     string `json:"notes" validate:"max=5"`
	Duration  int    `json:"duration" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{ServiceID: "a", Date: "b"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := Struct(sample{Notes: "toolongnotes"})
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	missing, _ := e.Args["missingFields"].(map[string]bool)
	if !missing["serviceId"] || !missing["date"] {
		t.Fatalf("expected json field names, got %#v", e.Args)
	}

	err = Struct(sample{ServiceID: "a", Date: "b", Notes: "toolongnotes"})
	if !errors.As(err, &e) || e.Args["field"] != "notes" {
		t.Fatalf("expected notes to fail, got %v", err)
	}
}
