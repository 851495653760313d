package settings

import "testing"

func TestParseValueBoolean(t *testing.T) {
	v, err := ParseValue(KindBoolean, "1")
	if err != nil || !v.Bool {
		t.Errorf("\"1\" should decode to true, got %+v, %v", v, err)
	}

	v, err = ParseValue(KindBoolean, "0")
	if err != nil || v.Bool {
		t.Errorf("\"0\" should decode to false, got %+v, %v", v, err)
	}

	_, err = ParseValue(KindBoolean, "yes")
	if err == nil {
		t.Error("booleans only accept the \"1\"/\"0\" encoding")
	}
}

func TestParseValueNumeric(t *testing.T) {
	v, err := ParseValue(KindNumeric, "42")
	if err != nil || v.Num != 42 {
		t.Errorf("expected 42, got %+v, %v", v, err)
	}

	_, err = ParseValue(KindNumeric, "forty-two")
	if err == nil {
		t.Error("expected an error for a non numeric value")
	}
}

func TestValueEncode(t *testing.T) {
	if got := (Value{Kind: KindBoolean, Bool: true}).Encode(); got != "1" {
		t.Errorf("true encodes to %q, expected \"1\"", got)
	}
	if got := (Value{Kind: KindNumeric, Num: -3}).Encode(); got != "-3" {
		t.Errorf("-3 encodes to %q", got)
	}
	if got := (Value{Kind: KindString, Str: "hello"}).Encode(); got != "hello" {
		t.Errorf("string passthrough broken, got %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"boolean": KindBoolean, "string": KindString, "numeric": KindNumeric} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", name, got, err)
		}
	}

	if _, err := ParseKind("float"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
