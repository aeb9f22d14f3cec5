// Package lib provides a Go SDK to synchronize crxsync tasks programmatically.
//
// This package allows applications to manage local tasks and sync them with
// CRM activities without shelling out to the crxsync CLI binary.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.AddTask(ctx, lib.AddTaskOpts{Title: "Call the client", Tags: []string{"work"}})
//	res, err := client.Sync(ctx)
//	tasks, err := client.ListTasks(ctx, &lib.ListTasksOpts{TagPattern: "work/**"})
//
// # Sync
//
// A sync pass reconciles the local tasks with the CRM activities: new local
// tasks are created as activities, local changes are pushed, remote changes
// are pulled and tasks completed or removed on either side converge. Only one
// pass runs at a time per client, [Client.Sync] returns [ErrSyncOngoing]
// otherwise.
//
// The CRM is an in-memory implementation of the activity API seeded from YAML
// ([Config].CRMSeed). Use [Client.CRMSnapshot] to keep its state between clients.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Task does not exist.
//   - [ErrAlreadyExists]: An open task with the same title already exists.
//   - [ErrNotValid]: Invalid input or operation (e.g. reopening an open task).
//   - [ErrSyncOngoing]: Another sync pass is running.
//   - [ErrAuthRequired]: The CRM rejected the credentials.
//
// # Testing
//
// Use an in-memory store to write tests without a database:
//
//	client, _ := lib.New(ctx, lib.Config{InMemory: true})
//	defer client.Close()
package lib
