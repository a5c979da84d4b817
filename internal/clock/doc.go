// Package clock abstracts wall time and delayed callbacks.
//
// Both client stores (session and notifications) schedule future
// transitions: the session expiry logout and notification auto-dismiss.
// They never call time.AfterFunc directly; they receive a Clock so tests
// can drive them with Fake and advance time explicitly.
//
//	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
//	clk.AfterFunc(3*time.Second, func() { fmt.Println("fired") })
//	clk.Advance(3 * time.Second) // prints "fired"
package clock
