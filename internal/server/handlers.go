package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

type calculatorInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Params      []calculator.ParamSpec `json:"params"`
}

// requestParams accepts a flat JSON object of strings, numbers and booleans
type requestParams calculator.Params

func (p *requestParams) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(requestParams, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			return fmt.Errorf("parameter %q must be a string, number or boolean", k)
		}
	}
	*p = out
	return nil
}

type invocationRequest struct {
	Name       string        `json:"name"`
	Calculator string        `json:"calculator"`
	Params     requestParams `json:"params"`
}

func (r invocationRequest) invocation() calculator.Invocation {
	return calculator.Invocation{Name: r.Name, Calculator: r.Calculator, Params: calculator.Params(r.Params)}
}

type compareRequest struct {
	Base         invocationRequest   `json:"base"`
	Alternative  *invocationRequest  `json:"alternative"`
	Alternatives []invocationRequest `json:"alternatives"`
	Metric       string              `json:"metric"`
	Goal         string              `json:"goal"`
}

type rateRequest struct {
	Value *decimal.Decimal `json:"value"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCalculators(w http.ResponseWriter, _ *http.Request) {
	calcs := s.registry.Calculators()
	out := make([]calculatorInfo, 0, len(calcs))
	for _, c := range calcs {
		out = append(out, calculatorInfo{Name: c.Name(), Description: c.Description(), Params: c.Params()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) describeCalculator(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.Create(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calculatorInfo{Name: c.Name(), Description: c.Description(), Params: c.Params()})
}

func (s *Server) runCalculator(w http.ResponseWriter, r *http.Request) {
	var params requestParams
	if err := decodeBody(r, &params); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "", "")
		return
	}
	if params == nil {
		params = requestParams{}
	}
	result, err := s.registry.Run(r.Context(), mux.Vars(r)["name"], calculator.Params(params))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "", "")
		return
	}
	goal, err := compare.ParseGoal(req.Goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var alternatives []calculator.Invocation
	if req.Alternative != nil {
		alternatives = append(alternatives, req.Alternative.invocation())
	}
	for _, alt := range req.Alternatives {
		alternatives = append(alternatives, alt.invocation())
	}

	set, err := s.registry.Compare(r.Context(), req.Base.invocation(), alternatives, compare.Criterion{Metric: req.Metric, Goal: goal})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rates.ListRates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []rates.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getRate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	value, ok, err := s.rates.Rate(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("rate %s is not set", key), "", "")
		return
	}
	writeJSON(w, http.StatusOK, rates.Entry{Key: key, Value: value})
}

func (s *Server) setRate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req rateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "", "")
		return
	}
	if req.Value == nil {
		writeJSONError(w, http.StatusBadRequest, "value is required", "", "value")
		return
	}
	if err := s.rates.SetRate(r.Context(), key, *req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.WithField("request_id", RequestID(r.Context())).Infof("rate %s set to %s", key, req.Value)
	writeJSON(w, http.StatusOK, rates.Entry{Key: key, Value: *req.Value})
}

func (s *Server) deleteRate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	deleted, err := s.rates.DeleteRate(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("rate %s is not set", key), "", "")
		return
	}
	s.logger.WithField("request_id", RequestID(r.Context())).Infof("rate %s deleted", key)
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps calculation errors onto HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, calculator.ErrUnknownCalculator) {
		return http.StatusNotFound
	}
	kind, ok := domain.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case domain.KindRateUnresolved:
		return http.StatusConflict
	case domain.KindInvalidParameter, domain.KindIRRNotFound, domain.KindUndefinedPayoff:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind, _ := domain.KindOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithField("request_id", RequestID(r.Context())).Errorf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSONError(w, status, msg, string(kind), domain.ParameterOf(err))
}

func writeJSONError(w http.ResponseWriter, status int, msg, kind, parameter string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind, Parameter: parameter})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
