// Package session defines the contract the bot consumes from the Tox
// network/messaging engine.
//
// The engine owns the network identity. It is driven by repeated calls to
// Iterate, each of which processes a batch of pending network work and
// delivers inbound events synchronously to the registered Handler before
// returning. Events are a closed set of variants (ConnectionChanged,
// FriendRequest, FriendMessage, FileRequest) consumed with a type switch:
//
//	eng.SetHandler(func(ev session.Event) {
//	    switch e := ev.(type) {
//	    case session.FriendMessage:
//	        _ = eng.SendMessage(e.FriendID, session.Message{Type: e.Type, Text: e.Text})
//	    }
//	})
//
//	for ctx.Err() == nil {
//	    eng.Iterate()
//	    time.Sleep(eng.IterationInterval())
//	}
//
// The engine handle must only be used from the goroutine that calls
// Iterate, or from handlers running inside that Iterate call.
package session
