package qbench

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantumSpace(t *testing.T) {
	Convey("Given a quantum space", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		qs := newQuantumSpace()

		Reset(func() {
			qs.Close()
		})

		Convey("When storing and retrieving values", func() {
			qs.Store("test-key", "test-value", nil, time.Minute)

			Convey("Value should be retrievable", func() {
				ch := qs.Await("test-key")
				select {
				case <-ctx.Done():
					t.Fatal("Test timed out waiting for value retrieval")
				case value := <-ch:
					So(value.Value, ShouldEqual, "test-value")
					So(value.Error, ShouldBeNil)
				}
			})
		})

		Convey("When awaiting before the value exists", func() {
			ch := qs.Await("late-key")

			go func() {
				time.Sleep(10 * time.Millisecond)
				qs.Store("late-key", 42, nil, time.Minute)
			}()

			select {
			case <-ctx.Done():
				t.Fatal("Test timed out waiting for late value")
			case value := <-ch:
				So(value.Value, ShouldEqual, 42)
				So(value.Error, ShouldBeNil)
			}
		})

		Convey("When a job stores an error", func() {
			qs.Store("failed-key", nil, errors.New("batch failed"), time.Minute)

			ch := qs.Await("failed-key")
			select {
			case <-ctx.Done():
				t.Fatal("Test timed out waiting for error value")
			case value := <-ch:
				So(value.Error, ShouldNotBeNil)
				So(value.Error.Error(), ShouldContainSubstring, "batch failed")
			}
		})
	})
}
