package authdriver

import "testing"

func TestIsProxyReconnectTransient(t *testing.T) {
	cases := map[string]bool{
		"ERR_CONNECTION_CLOSED":              true,
		"err_network_changed occurred":       true,
		"This site can't be reached":         false,
		"signed in successfully":             false,
	}
	for text, want := range cases {
		if got := isProxyReconnectTransient(text); got != want {
			t.Errorf("isProxyReconnectTransient(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestHandlerResult_Done(t *testing.T) {
	if (HandlerResult{}).Done() {
		t.Fatal("zero-value HandlerResult must not be Done")
	}
	if advanced().Done() {
		t.Fatal("advanced() result must not be Done")
	}
	if !advanced().Advanced {
		t.Fatal("advanced() must set Advanced")
	}
}
