package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/easyorder/internal/reports"
	"github.com/imrishuroy/easyorder/internal/store/storetest"
)

func TestSeed_IsRepeatable(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		sum, err := Seed(ctx, db, now)
		require.NoError(t, err)
		assert.Equal(t, Summary{Customers: 3, Products: 3, Orders: 2, Payments: 2, Deliveries: 2}, sum)
	}

	svc := reports.NewService(db)
	perCustomer, err := svc.OrdersPerCustomer(ctx)
	require.NoError(t, err)
	require.Len(t, perCustomer, 3, "second run replaced the first")
	assert.Equal(t, int64(1), perCustomer[0].TotalOrders)
	assert.Equal(t, int64(0), perCustomer[2].TotalOrders)

	rev, err := svc.Revenue(ctx, "2025-05-10", "2025-05-10")
	require.NoError(t, err)
	assert.Equal(t, "3650.00", rev.TotalRevenue.StringFixed(2))
}
