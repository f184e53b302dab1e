// Package app wires the bikereport components together and manages their
// lifecycle.
//
// # Initialization Flow
//
//	1. Initialize logging from the loaded configuration
//	2. Resolve and create the data directories
//	3. Initialize OpenTelemetry (trace file, metrics textfile)
//	4. Open, migrate and seed the credential store
//	5. Build the report pipeline: fetch, load, analyze, render, export
//
// # Usage
//
//	application, err := app.NewApplication(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(ctx)
//
//	session, err := application.Login(ctx, prompter)
//	state, err := application.GenerateReport(ctx, session, "")
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, leaving the exit code to the main function.
package app
