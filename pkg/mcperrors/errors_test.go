package mcperrors

import "testing"

func TestEveryErrorTypeSatisfiesCoded(t *testing.T) {
	errs := []Coded{
		&ParseError{Message: "bad json"},
		&ProtocolError{Message: "wrong shape"},
		&MethodNotFoundError{Method: "ghost"},
		&NotInitializedError{},
		&ValidationError{Message: "missing field"},
		&ToolNotFoundError{Name: "calc"},
		&ResourceNotFoundError{URI: "docs://x"},
		&PromptNotFoundError{Name: "review"},
		&InvalidResourceError{URI: "bad://x", Message: "no such scheme"},
		&AuthorizationError{Message: "denied"},
		&InternalError{Message: "oops"},
	}

	codes := map[int]bool{}
	for _, e := range errs {
		if e.Error() == "" {
			t.Errorf("%T.Error() returned empty string", e)
		}
		codes[e.Code()] = true
	}

	want := []int{CodeParse, CodeProtocol, CodeMethodNotFound, CodeNotInitialized, CodeValidation, CodeNotFound, CodeInternal}
	for _, c := range want {
		if !codes[c] {
			t.Errorf("expected some error to report code %d", c)
		}
	}
}

func TestMethodNotFoundErrorMessageNamesMethod(t *testing.T) {
	err := &MethodNotFoundError{Method: "foo/bar"}
	if err.Error() != "Method not found: foo/bar" {
		t.Errorf("got %q", err.Error())
	}
}
