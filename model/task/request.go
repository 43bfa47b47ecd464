package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/boque/model/types"
)

// Request represents a submission received over the wire
type Request struct {
	Name     string `json:"name"`
	Cmd      string `json:"cmd"`
	Resource string `json:"resource,omitempty"`
}

// DecodeRequest decodes and validates a UTF-8 JSON submission
func DecodeRequest(data []byte) (*Request, error) {
	request := &Request{}
	if err := json.Unmarshal(data, request); err != nil {
		return nil, types.NewMalformedRequestError(err)
	}
	if err := request.Validate(); err != nil {
		return nil, types.NewMalformedRequestError(err)
	}
	return request, nil
}

// Validate checks required fields; the name is also the log file name
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name was empty")
	}
	if r.Name == "." || r.Name == ".." || strings.ContainsAny(r.Name, "/\\\x00") {
		return fmt.Errorf("name %q is not a valid file name", r.Name)
	}
	if strings.TrimSpace(r.Cmd) == "" {
		return fmt.Errorf("cmd was empty")
	}
	return nil
}

// Task creates a pending task from the request
func (r *Request) Task() *Task {
	return New(r.Name, r.Cmd, strings.TrimSpace(r.Resource))
}
