package tneo_test

import (
	"fmt"

	"github.com/prog012/tneo"
)

// This example builds a kernel, starts a producer and a consumer task at
// two different priorities, and uses an event group to hand a single "ready" signal
// from one to the other.
func Example() {
	k := tneo.NewKernel(tneo.KernelConfig{PriorityCount: 4})
	ready := k.NewEventGroup(0)
	done := make(chan struct{})

	const readyBit = 0x01

	var consumer *tneo.Task
	consumer = k.NewTask(tneo.TaskConfig{
		Priority: 0,
		Entry: func(any) {
			actual, rc, err := ready.Wait(tneo.WaitOr, readyBit, tneo.TicksInfinite)
			if err != nil {
				panic(err)
			}
			fmt.Printf("consumer woke: rc=%s actual=%#x\n", rc, actual)
			close(done)
		},
	})

	var producer *tneo.Task
	producer = k.NewTask(tneo.TaskConfig{
		Priority: 1,
		Entry: func(any) {
			fmt.Println("producer publishing")
			if _, err := ready.Modify(tneo.OpSet, readyBit); err != nil {
				panic(err)
			}
			producer.Sleep(tneo.TicksInfinite)
		},
	})

	if _, err := consumer.Activate(); err != nil {
		panic(err)
	}
	if _, err := producer.Activate(); err != nil {
		panic(err)
	}

	<-done

	// Output:
	// producer publishing
	// consumer woke: rc=OK actual=0x1
}
