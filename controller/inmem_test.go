package controller_test

import (
	"testing"

	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/controller/testsuite"
)

func TestInMemStore(t *testing.T) {
	testsuite.Suite(t, controller.InMemStore(), func() {})
}

func TestInstrumentedStore(t *testing.T) {
	testsuite.Suite(t, controller.InstrumentStore(controller.InMemStore()), func() {})
}
