package main

import (
	"fmt"

	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"

	"github.com/spf13/cobra"
)

var checkoutReq domain.CheckoutRequest

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := a.shop.Checkout(cmd.Context(), checkoutReq)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, view.OK("Order placed"))
		fmt.Fprintln(out, view.Order(order))
		printBadges(cmd)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := a.shop.Orders(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Orders(orders))
		return nil
	},
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&checkoutReq.Delivery.Recipient, "recipient", "", "Recipient name")
	f.StringVar(&checkoutReq.Delivery.Phone, "phone", "", "Recipient phone")
	f.StringVar(&checkoutReq.Delivery.Email, "email", "", "Email for order updates")
	f.StringVar(&checkoutReq.Delivery.City, "city", "", "City")
	f.StringVar(&checkoutReq.Delivery.Address, "address", "", "Street address or post office")
	f.StringVar(&checkoutReq.Delivery.Method, "delivery", "courier", "courier, pickup or post")
	f.StringVar(&checkoutReq.PaymentMethod, "payment", "card", "card or cash")
	f.StringVar(&checkoutReq.Comment, "comment", "", "Comment for the shop")
}
