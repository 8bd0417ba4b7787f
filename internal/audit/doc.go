// Package audit records looking glass executions in the executions table.
//
// Every Execute outcome (success or rejection) becomes one Entry. Recorder
// plugs the repository into the engine as an observer:
//
//	repo := audit.NewSQLiteRepository(db.DB)
//	engine.AddObserver(audit.NewRecorder(repo))
//
// Entries carry the rendered command line and the outcome, never device
// credentials or command output.
package audit
