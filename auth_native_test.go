package wiremysql

import (
	"bytes"
	"crypto/sha1"
	"testing"
)

func TestNativePasswordEmptyPassword(t *testing.T) {
	resp, err := (nativePasswordPlugin{}).Compute("", make([]byte, 20))
	if err != nil {
		t.Fatal(err)
	}
	if resp != nil {
		t.Fatalf("expected a nil response for an empty password, got %v", resp)
	}
}

// TestNativePasswordKnownVector recomputes the scramble independently
// (SHA1(P) XOR SHA1(challenge || SHA1(SHA1(P)))) and checks the plugin
// matches, rather than hard-coding a fixture vector tied to one fixed
// challenge.
func TestNativePasswordKnownVector(t *testing.T) {
	password := "s3cr3t"
	challenge := []byte("01234567890123456789")[:20]

	stage1 := sha1.Sum([]byte(password))
	stage2 := sha1.Sum(stage1[:])
	h := sha1.New()
	h.Write(challenge)
	h.Write(stage2[:])
	scramble := h.Sum(nil)

	want := make([]byte, len(scramble))
	for i := range want {
		want[i] = scramble[i] ^ stage1[i]
	}

	got, err := (nativePasswordPlugin{}).Compute(password, challenge)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("scramble mismatch:\n got %x\nwant %x", got, want)
	}
}

func TestNativePasswordDeterministic(t *testing.T) {
	challenge := bytes.Repeat([]byte{0x42}, 20)
	a, err := (nativePasswordPlugin{}).Compute("hunter2", challenge)
	if err != nil {
		t.Fatal(err)
	}
	b, err := (nativePasswordPlugin{}).Compute("hunter2", challenge)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected the same password/challenge pair to scramble identically")
	}
}

func TestAuthPluginRegistry(t *testing.T) {
	if _, ok := lookupAuthPlugin("mysql_native_password"); !ok {
		t.Fatal("expected mysql_native_password to be registered by default")
	}
	if _, ok := lookupAuthPlugin("client_ed25519"); !ok {
		t.Fatal("expected client_ed25519 to be registered by default")
	}
	if _, ok := lookupAuthPlugin("does_not_exist"); ok {
		t.Fatal("expected an unregistered plugin name to miss")
	}
}

type recordingPlugin struct{ name string }

func (p recordingPlugin) Name() string { return p.name }
func (p recordingPlugin) Compute(string, []byte) ([]byte, error) { return []byte("ok"), nil }

func TestRegisterAuthPluginRegistersByName(t *testing.T) {
	RegisterAuthPlugin(recordingPlugin{name: "test_plugin_override"})
	p, ok := lookupAuthPlugin("test_plugin_override")
	if !ok {
		t.Fatal("expected the registered plugin to be found")
	}
	resp, err := p.Compute("", nil)
	if err != nil || string(resp) != "ok" {
		t.Fatalf("unexpected Compute result: %q, %v", resp, err)
	}
}
