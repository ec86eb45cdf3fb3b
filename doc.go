// Package crowdgate turns a crowd-size estimate into a four-gate
// traffic-light recommendation.
//
// # Quick Start
//
//	engine, err := crowdgate.NewEngine(crowdgate.DefaultDecisionConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eval, err := engine.Evaluate(100)
//	if err != nil {
//	    log.Fatal(err) // negative counts are rejected
//	}
//
//	for _, g := range eval.Gates {
//	    fmt.Println(g.Name, g.Load, g.Status, g.Action)
//	    if g.Redirect != nil {
//	        fmt.Println("  ", g.Redirect.Message)
//	    }
//	}
//
// # Decision Rules
//
// The total is split across the gates as floor(total * weight) with the
// default weights 0.35, 0.25, 0.20 and 0.20. Truncation is not reconciled,
// so the gate loads may sum to less than the total.
//
// Each load is classified independently:
//
//   - load <= 25: GREEN  (IN OPEN / OUT OPEN)
//   - load <= 40: YELLOW (IN SLOW / OUT OPEN)
//   - otherwise:  RED    (IN BLOCKED / OUT ONLY)
//
// A RED gate suggests moving the crowd to the next gate. The last gate has
// no successor and reports "All gates overloaded" instead.
//
// # Display Limits
//
// The informational banner quotes its own limits (GreenLimit 50,
// YellowLimit 100) for the total crowd. They are separate
// from the gate thresholds and never feed into classification.
//
// # Time Mode
//
// SelectMode and ModeAt map the hour of day to MORNING ([6, 18)) or NIGHT.
// The mode is cosmetic; the Engine never reads it.
//
// # Estimation
//
// Crowd counts can also come from the estimator package, which samples a
// short video with GStreamer and falls back to a fixed estimate when video
// processing is unavailable.
package crowdgate
