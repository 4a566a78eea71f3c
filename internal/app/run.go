package app

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Run processes the configuration and writes the result to the output writer
// in the configured format.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run method started.")

	result, err := a.Process(ctx)
	if err != nil {
		return err
	}
	if err := a.write(result); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Reference writes the commented schema reference to the output writer.
func (a *App) Reference(ctx context.Context) error {
	out, err := a.schema.Reference()
	if err != nil {
		return err
	}
	if _, err := a.outW.Write(out); err != nil {
		return fmt.Errorf("failed to write reference: %w", err)
	}
	return nil
}

func (a *App) write(result *Result) error {
	var (
		out []byte
		err error
	)
	switch a.config.OutputFormat {
	case "json":
		out, err = json.MarshalIndent(result, "", "  ")
		out = append(out, '\n')
	default:
		out, err = yaml.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if _, err := a.outW.Write(out); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
