package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workpulse/internal/alerts"
	"workpulse/internal/capacity"
	"workpulse/internal/forecast"
	"workpulse/internal/schedule"
)

var errMethodNotFound = errors.New("method not found")

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "getActiveAlerts":
		return s.getActiveAlerts(params)
	case "acknowledgeAlert":
		return s.acknowledgeAlert(params)
	case "resolveAlert":
		return s.resolveAlert(params)
	case "generateInsights":
		return s.generateInsights(ctx, params)
	case "runMonitoringCycle":
		return nil, s.alerts.RunMonitoringCycle(ctx)
	case "forecastSprintCapacity":
		return s.forecastSprintCapacity(ctx, params)
	case "assessBurnoutRisk":
		return s.assessBurnoutRisk(ctx, params)
	case "calculateOptimalTeamSize":
		return s.calculateOptimalTeamSize(params)
	case "predictDeliveryDate":
		return s.predictDeliveryDate(ctx, params)
	case "calculateTeamPerformance":
		return s.calculateTeamPerformance(ctx, params)
	case "calculateCompanyPerformance":
		return s.perf.CalculateCompanyPerformance(ctx)
	case "calculateTeamCapacity":
		return s.calculateTeamCapacity(ctx, params)
	case "calculateCompanyCapacity":
		return s.calculateCompanyCapacity(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}
}

func (s *Server) getActiveAlerts(params json.RawMessage) (interface{}, error) {
	var p struct {
		Entity   string `json:"entity"`
		Type     string `json:"type"`
		Severity string `json:"severity"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.alerts.GetActiveAlerts(alerts.Filters{Entity: p.Entity, Type: p.Type, Severity: p.Severity}), nil
}

func (s *Server) acknowledgeAlert(params json.RawMessage) (interface{}, error) {
	var p struct {
		ID    string `json:"id"`
		Actor string `json:"actor"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.alerts.AcknowledgeAlert(p.ID, p.Actor), nil
}

func (s *Server) resolveAlert(params json.RawMessage) (interface{}, error) {
	var p struct {
		ID    string `json:"id"`
		Actor string `json:"actor"`
		Note  string `json:"note"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.alerts.ResolveAlert(p.ID, p.Actor, p.Note), nil
}

func (s *Server) generateInsights(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(p.Start, p.End)
	if err != nil {
		return nil, err
	}
	return s.alerts.GenerateInsights(ctx, start, end)
}

func (s *Server) forecastSprintCapacity(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		TeamID       string `json:"team_id"`
		SprintsAhead int    `json:"sprints_ahead"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.forecasts.ForecastSprintCapacity(ctx, p.TeamID, p.SprintsAhead)
}

func (s *Server) assessBurnoutRisk(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		MemberID   string `json:"member_id"`
		MonthsBack int    `json:"months_back"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.MonthsBack <= 0 {
		p.MonthsBack = 6
	}
	return s.forecasts.AssessBurnoutRisk(ctx, p.MemberID, p.MonthsBack)
}

func (s *Server) calculateOptimalTeamSize(params json.RawMessage) (interface{}, error) {
	var p forecast.ProjectRequirements
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return forecast.CalculateOptimalTeamSize(p), nil
}

func (s *Server) predictDeliveryDate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		TeamID string                 `json:"team_id"`
		Items  []forecast.BacklogItem `json:"items"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.forecasts.PredictDeliveryDate(ctx, p.TeamID, p.Items)
}

func (s *Server) calculateTeamPerformance(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		TeamID string `json:"team_id"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	return s.perf.CalculateTeamPerformance(ctx, p.TeamID)
}

func (s *Server) calculateTeamCapacity(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		TeamID        string `json:"team_id"`
		Start         string `json:"start"`
		End           string `json:"end"`
		AssumeFullDay bool   `json:"assume_full_day"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Start == "" && p.End == "" {
		return s.calc.SprintToDateCapacity(ctx, p.TeamID)
	}
	start, end, err := parsePeriod(p.Start, p.End)
	if err != nil {
		return nil, err
	}
	return s.calc.TeamCapacity(ctx, p.TeamID, start, end, capacity.Options{AssumeFullDay: p.AssumeFullDay})
}

func (s *Server) calculateCompanyCapacity(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(p.Start, p.End)
	if err != nil {
		return nil, err
	}
	return s.calc.CompanyWideCapacity(ctx, start, end)
}

func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// parsePeriod accepts plain dates or full RFC3339 timestamps.
func parsePeriod(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := parseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s precedes start %s", endRaw, startRaw)
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(schedule.DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
