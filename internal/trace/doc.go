// Package trace records client request exchanges to a file and reads them back.
//
// Each Event is CBOR-encoded with integer keys and appended to the file, so a
// trace can be written by several CLI runs and dumped later:
//
//	rec, err := trace.NewFileRecorder("session.smtrace")
//	if err != nil {
//	    return err
//	}
//	defer rec.Close()
//
//	client, err := streammagic.NewClient(host, streammagic.WithTracer(rec))
//
// Every recorder stamps its events with a random session id so that runs
// sharing one file can be told apart.
package trace
