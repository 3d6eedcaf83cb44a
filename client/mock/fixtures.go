package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/courier/client/request"
)

// ErrInvalidFixture is wrapped by every fixture validation failure.
var ErrInvalidFixture = errors.New("invalid mock fixture")

type fixtureFile struct {
	Mocks []Fixture `yaml:"mocks"`
}

// Fixture is the declarative form of one queued outcome, as found in fixture
// files. A zero Status with a body means 200; with neither, the outcome has
// no response.
type Fixture struct {
	Method   string            `yaml:"method"   json:"method"   validate:"required"`
	Resource string            `yaml:"resource" json:"resource" validate:"required"`
	Status   int               `yaml:"status"   json:"status"   validate:"omitempty,min=100,max=599"`
	Headers  map[string]string `yaml:"headers"  json:"headers"`
	Body     string            `yaml:"body"     json:"body"`
	JSON     any               `yaml:"json"     json:"json"`
	Error    string            `yaml:"error"    json:"error"`
	Offline  bool              `yaml:"offline"  json:"offline"`
	Delay    string            `yaml:"delay"    json:"delay"`
}

// AddFixture validates fx and queues its outcome.
func (r *Registry) AddFixture(fx Fixture) error {
	key, outcome, err := fx.outcome()
	if err != nil {
		return err
	}

	r.Register(key.Method, key.Resource, outcome)

	return nil
}

// LoadFile registers every outcome described in the YAML file at path.
func (r *Registry) LoadFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("fixture file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture file: %w", err)
	}
	defer f.Close()

	if err := r.Load(f); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// Load registers every outcome described by the YAML document in rd.
// Fixtures are validated before any is registered.
//
//	mocks:
//	  - method: GET
//	    resource: https://api.example.com/users
//	    status: 200
//	    headers: {Content-Type: application/json}
//	    json: [alice, bob]
//	  - method: GET
//	    resource: https://api.example.com/users
//	    offline: true
func (r *Registry) Load(rd io.Reader) error {
	var file fixtureFile
	if err := yaml.NewDecoder(rd).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode fixtures: %w", err)
	}

	type entry struct {
		key     Key
		outcome Outcome
	}

	entries := make([]entry, 0, len(file.Mocks))
	for i, fx := range file.Mocks {
		key, outcome, err := fx.outcome()
		if err != nil {
			return fmt.Errorf("mock[%d]: %w", i, err)
		}
		entries = append(entries, entry{key: key, outcome: outcome})
	}

	for _, e := range entries {
		r.Register(e.key.Method, e.key.Resource, e.outcome)
	}

	return nil
}

func (fx Fixture) outcome() (Key, Outcome, error) {
	method := request.Method(strings.ToUpper(fx.Method))
	if !method.Valid() {
		return Key{}, Outcome{}, fmt.Errorf("%w: method %q", ErrInvalidFixture, fx.Method)
	}
	if fx.Resource == "" {
		return Key{}, Outcome{}, fmt.Errorf("%w: resource is required", ErrInvalidFixture)
	}
	if fx.Body != "" && fx.JSON != nil {
		return Key{}, Outcome{}, fmt.Errorf("%w: body and json are mutually exclusive", ErrInvalidFixture)
	}

	outcome := Outcome{
		StatusCode: fx.Status,
		Header:     http.Header{},
	}
	for k, v := range fx.Headers {
		outcome.Header.Set(k, v)
	}

	switch {
	case fx.JSON != nil:
		body, err := json.Marshal(fx.JSON)
		if err != nil {
			return Key{}, Outcome{}, fmt.Errorf("%w: json body: %w", ErrInvalidFixture, err)
		}
		outcome.Body = body
		if outcome.Header.Get("Content-Type") == "" {
			outcome.Header.Set("Content-Type", "application/json")
		}
	case fx.Body != "":
		outcome.Body = []byte(fx.Body)
	}

	switch {
	case fx.Offline:
		outcome.Err = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
		outcome.StatusCode = 0
	case fx.Error != "":
		outcome.Err = errors.New(fx.Error)
		outcome.StatusCode = 0
	case fx.Status == 0 && len(outcome.Body) > 0:
		outcome.StatusCode = http.StatusOK
	}

	if fx.Delay != "" {
		d, err := time.ParseDuration(fx.Delay)
		if err != nil {
			return Key{}, Outcome{}, fmt.Errorf("%w: delay: %w", ErrInvalidFixture, err)
		}
		outcome.Delay = d
	}

	return Key{Method: method, Resource: fx.Resource}, outcome, nil
}
