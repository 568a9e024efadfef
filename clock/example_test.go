package clock_test

import (
	"fmt"
	"time"

	"github.com/adamwoolhether/pacer/clock"
)

func ExampleClock_Loop() {
	c, err := clock.New(time.Millisecond)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for i, err := range c.Loop(clock.MaxTicks(3)) {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("tick", i)
	}
	fmt.Println("total", c.Ticks())

	// Output:
	// tick 0
	// tick 1
	// tick 2
	// total 3
}

func ExampleClock_Loop_exclusive() {
	c, _ := clock.New(time.Millisecond)

	for _, err := range c.Loop(clock.MaxTicks(5), clock.For(time.Second)) {
		fmt.Println(err)
	}

	// Output: max ticks and duration are mutually exclusive: invalid argument
}
