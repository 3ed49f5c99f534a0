package screeningvalidator

import (
	"encoding/json"
	"testing"
)

func TestResultPoolReuse(t *testing.T) {
	r := AcquireResult()
	if !r.Valid {
		t.Fatal("fresh result Valid = false, want true")
	}
	r.AddError(NewError(CodeInvalidJSON, "").Message("boom").Build())
	if r.Valid {
		t.Fatal("Valid = true after AddError")
	}
	r.Release()

	r2 := AcquireResult()
	if !r2.Valid || r2.ErrorCount() != 0 {
		t.Errorf("reacquired result = valid %v, %d errors; want clean", r2.Valid, r2.ErrorCount())
	}
	r2.Release()
}

func TestResultByCode(t *testing.T) {
	r := AcquireResult()
	defer r.Release()

	r.AddError(NewError(CodeMandatoryMissing, RuleRequired).Build())
	r.AddError(NewError(CodeTypeMismatch, RuleType).Build())
	r.AddError(NewError(CodeMandatoryMissing, RuleRequired).Build())

	if got := r.ByCode(CodeMandatoryMissing); len(got) != 2 {
		t.Errorf("ByCode(MANDATORY_MISSING) = %d, want 2", len(got))
	}
	if got := r.ByCode(CodeInvalidCode); got != nil {
		t.Errorf("ByCode(INVALID_CODE) = %v, want nil", got)
	}
}

func TestResultJSONUsesIsValid(t *testing.T) {
	r := AcquireResult()
	defer r.Release()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["isValid"] != true {
		t.Errorf(`decoded["isValid"] = %v, want true`, decoded["isValid"])
	}
}
