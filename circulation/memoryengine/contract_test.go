package memoryengine_test

import (
	"testing"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/testutil/storetest"
)

func Test_Store_FulfillsTheStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) circulation.Store {
		return newStore(t)
	})
}
