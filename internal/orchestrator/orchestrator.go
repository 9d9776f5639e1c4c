// Package orchestrator fans a generation request out to the configured
// prompt services in parallel and collects the results in service order.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fluxprompt/internal/translator"
)

type Config struct {
	// Timeout bounds each individual service call.
	Timeout time.Duration
	// MinServices is the minimum number of successful results required for
	// Execute to be considered a success.
	MinServices int
}

type Result struct {
	// Results holds successful service results, ordered by the configured
	// service order regardless of completion order.
	Results []translator.ServiceResult
	// Failures holds the result structs of failed attempts, in service
	// order, so callers can record latency and error per service.
	Failures  []translator.ServiceResult
	Errors    []error
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	services []translator.PromptService
	config   Config
}

func New(services []translator.PromptService, config Config) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MinServices <= 0 {
		config.MinServices = 1
	}
	return &Orchestrator{
		services: services,
		config:   config,
	}
}

func (o *Orchestrator) Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.GenerateRequest) *Result {
	type slot struct {
		res *translator.ServiceResult
		err error
	}
	slots := make([]slot, len(o.services))

	var wg sync.WaitGroup
	for i, svc := range o.services {
		wg.Add(1)
		go func(index int, service translator.PromptService) {
			defer wg.Done()

			serviceCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
			defer cancel()

			res, err := service.Generate(serviceCtx, cfg, req)
			slots[index] = slot{res: res, err: err}
		}(i, svc)
	}
	wg.Wait()

	result := &Result{
		Results: make([]translator.ServiceResult, 0, len(o.services)),
		Errors:  make([]error, 0),
	}

	for i, s := range slots {
		switch {
		case s.err != nil:
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", o.services[i].Name(), s.err))
			result.Failures = append(result.Failures, failedResult(o.services[i].Name(), s.res, s.err))
			result.Failed++
		case s.res != nil && s.res.Error != "":
			result.Errors = append(result.Errors, fmt.Errorf("%s: %s", s.res.ServiceName, s.res.Error))
			result.Failures = append(result.Failures, *s.res)
			result.Failed++
		case s.res != nil:
			result.Results = append(result.Results, *s.res)
			result.Succeeded++
		}
	}

	return result
}

// failedResult normalizes a failed attempt into a result struct. Backends
// return a populated struct alongside the error; a nil one (from a service
// that returned only an error) is synthesized.
func failedResult(serviceName string, res *translator.ServiceResult, err error) translator.ServiceResult {
	if res != nil {
		if res.Error == "" {
			res.Error = err.Error()
		}
		return *res
	}
	return translator.ServiceResult{ServiceName: serviceName, Error: err.Error()}
}

// Generate runs the fan-out and returns the first successful result in
// service order, so callers can treat the orchestrator as a single service.
func (o *Orchestrator) Generate(ctx context.Context, cfg translator.ServiceConfig, req translator.GenerateRequest) (*translator.ServiceResult, error) {
	result := o.Execute(ctx, cfg, req)

	if result.Succeeded < o.config.MinServices {
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("all prompt services failed: %w", result.Errors[0])
		}
		return nil, fmt.Errorf("no prompt services configured")
	}

	return &result.Results[0], nil
}
