package main

import (
	"fmt"

	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"

	"github.com/spf13/cobra"
)

var (
	cartQty    int
	cartToSize string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the cart",
	RunE:  runCartList,
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartList,
}

func runCartList(cmd *cobra.Command, args []string) error {
	entries, err := a.shop.Cart(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cart (%s)\n%s\n", a.shop.Mode(), view.Cart(entries))
	return nil
}

var cartAddCmd = &cobra.Command{
	Use:   "add <article> <size>",
	Short: "Add pairs of one size",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := a.shop.AddToCart(cmd.Context(), args[0], args[1], cartQty)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK(fmt.Sprintf("%s size %s: %d in cart", line.ArticleNumber, line.Size, line.Quantity)))
		printBadges(cmd)
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <article> <size>",
	Short: "Change the quantity or size of a line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var changes domain.CartLineUpdate
		if cmd.Flags().Changed("qty") {
			changes.Quantity = &cartQty
		}
		if cartToSize != "" {
			changes.Size = &cartToSize
		}
		if changes.Quantity == nil && changes.Size == nil {
			return fmt.Errorf("%w: nothing to change, use --qty or --to-size", domain.ErrInvalidInput)
		}
		if err := a.shop.UpdateCartLine(cmd.Context(), args[0], args[1], changes); err != nil {
			return err
		}
		printBadges(cmd)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <article> [size]",
	Short: "Remove a line, or every size of the article",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size := ""
		if len(args) == 2 {
			size = args[1]
		}
		if err := a.shop.RemoveFromCart(cmd.Context(), args[0], size); err != nil {
			return err
		}
		printBadges(cmd)
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Remove everything from the cart?") {
			return nil
		}
		if err := a.shop.ClearCart(cmd.Context()); err != nil {
			return err
		}
		printBadges(cmd)
		return nil
	},
}

var favCmd = &cobra.Command{
	Use:     "fav",
	Aliases: []string{"favorites"},
	Short:   "Manage favorites",
	RunE:    runFavList,
}

var favListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show favorites",
	Args:  cobra.NoArgs,
	RunE:  runFavList,
}

func runFavList(cmd *cobra.Command, args []string) error {
	entries, err := a.shop.Favorites(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), view.Favorites(entries))
	return nil
}

var favAddCmd = &cobra.Command{
	Use:   "add <article>",
	Short: "Add a product to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := a.shop.AddFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		printBadges(cmd)
		return nil
	},
}

var favRemoveCmd = &cobra.Command{
	Use:   "remove <article>",
	Short: "Remove a product from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := a.shop.RemoveFavorite(cmd.Context(), args[0]); err != nil {
			return err
		}
		printBadges(cmd)
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&cartQty, "qty", 1, "Number of pairs")
	cartUpdateCmd.Flags().IntVar(&cartQty, "qty", 1, "New number of pairs")
	cartUpdateCmd.Flags().StringVar(&cartToSize, "to-size", "", "Move the line to another size")

	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	favCmd.AddCommand(favListCmd)
	favCmd.AddCommand(favAddCmd)
	favCmd.AddCommand(favRemoveCmd)
}
