package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite drives scenarios against a running chat server. Suites
// skip themselves when no server address is configured, so the package
// stays inert in unit runs.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping e2e suite")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Call issues one JSON request, logging a colorized step header and,
// when E2E_DEBUG_JSON is on, the full bodies.
func (s *BaseHTTPSuite) Call(t *testing.T, name, method, path string, payload any, out any) int {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	var body bytes.Buffer
	if payload != nil {
		s.Require().NoError(json.NewEncoder(&body).Encode(payload))
		if s.Config.DebugJSON {
			t.Logf(">>> %s", body.String())
		}
	}

	request, err := http.NewRequest(method, s.Config.ServerAddr+path, &body)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")

	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		t.Logf("<<< %d %s", response.StatusCode, string(raw))
	}
	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}
