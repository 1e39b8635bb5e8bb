package journalkey

import "testing"

func TestNewServiceReprAcceptsGrammar(t *testing.T) {
	ok := []string{"foo.service", "getty@tty1.service", "a:b_c-d@e\\f"}
	for _, s := range ok {
		if _, accepted := NewServiceRepr([]byte(s)); !accepted {
			t.Errorf("expected %q to be accepted", s)
		}
	}
}

func TestNewServiceReprRejectsBadBytes(t *testing.T) {
	bad := []string{"foo service", "foo/bar.service", "foo\x00bar", ""}
	for _, s := range bad {
		if _, accepted := NewServiceRepr([]byte(s)); accepted {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestNewServiceReprRejectsOverlength(t *testing.T) {
	long := make([]byte, MaxServiceLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, accepted := NewServiceRepr(long); accepted {
		t.Fatal("expected overlong name to be rejected")
	}
	ok := make([]byte, MaxServiceLen)
	for i := range ok {
		ok[i] = 'a'
	}
	if _, accepted := NewServiceRepr(ok); !accepted {
		t.Fatal("expected exactly-max-length name to be accepted")
	}
}

func TestServiceReprMatchesExact(t *testing.T) {
	a, _ := NewServiceRepr([]byte("foo.service"))
	b, _ := NewServiceRepr([]byte("foo.service"))
	c, _ := NewServiceRepr([]byte("bar.service"))
	if !a.Matches(b) {
		t.Fatal("expected exact match")
	}
	if a.Matches(c) {
		t.Fatal("expected no match")
	}
}

func TestServiceReprMatchesTemplate(t *testing.T) {
	template, _ := NewServiceRepr([]byte("getty@.service"))
	instance1, _ := NewServiceRepr([]byte("getty@tty1.service"))
	instance2, _ := NewServiceRepr([]byte("getty@tty2.service"))
	other, _ := NewServiceRepr([]byte("sshd.service"))

	if !template.Matches(instance1) {
		t.Fatal("expected template to match instance1")
	}
	if !template.Matches(instance2) {
		t.Fatal("expected template to match instance2")
	}
	if template.Matches(other) {
		t.Fatal("expected template not to match unrelated unit")
	}
}
