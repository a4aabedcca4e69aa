package main

import (
	"fmt"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"

	"github.com/spf13/cobra"
)

var productQuery gateway.ProductQuery

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse products",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := a.api.ListProducts(cmd.Context(), productQuery)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Catalog(page))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <article>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := a.api.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), view.ProductDetail(p))
		return nil
	},
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories and brands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := a.api.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		brands, err := a.api.ListBrands(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Categories:")
		for _, c := range cats {
			fmt.Fprintf(out, "  %3d  %s\n", c.ID, c.Name)
		}
		fmt.Fprintln(out, "Brands:")
		for _, b := range brands {
			fmt.Fprintf(out, "  %3d  %s\n", b.ID, b.Name)
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Read and write product reviews",
}

var reviewListCmd = &cobra.Command{
	Use:   "list <article>",
	Short: "List published reviews of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := a.api.ListReviews(cmd.Context(), args[0], 1, 20)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(page.Data) == 0 {
			fmt.Fprintln(out, "No reviews yet.")
		}
		for _, r := range page.Data {
			fmt.Fprintf(out, "%d/5  %s  %s\n", r.Rating, r.AuthorName, r.Comment)
		}
		return nil
	},
}

var reviewRating int
var reviewComment string

var reviewAddCmd = &cobra.Command{
	Use:   "add <article>",
	Short: "Review a product you bought",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := a.api.AddReview(cmd.Context(), args[0], domain.ReviewRequest{Rating: reviewRating, Comment: reviewComment})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Thanks, your review will appear after moderation"))
		return nil
	},
}

func init() {
	f := catalogListCmd.Flags()
	f.StringVarP(&productQuery.Query, "query", "q", "", "Search text")
	f.StringVar(&productQuery.Size, "size", "", "Size in stock, e.g. 30")
	f.StringVar(&productQuery.Gender, "gender", "", "girls, boys or unisex")
	f.Int32Var(&productQuery.CategoryID, "category", 0, "Category id")
	f.Int32Var(&productQuery.BrandID, "brand", 0, "Brand id")
	f.StringVar(&productQuery.MinPrice, "min-price", "", "Lowest price")
	f.StringVar(&productQuery.MaxPrice, "max-price", "", "Highest price")
	f.BoolVar(&productQuery.OnSale, "on-sale", false, "Only discounted products")
	f.StringVar(&productQuery.Sort, "sort", "", "newest, price_asc, price_desc or discount")
	f.IntVar(&productQuery.Page, "page", 1, "Page")
	f.IntVar(&productQuery.Limit, "limit", 20, "Products per page")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogCategoriesCmd)

	reviewAddCmd.Flags().IntVar(&reviewRating, "rating", 5, "Rating from 1 to 5")
	reviewAddCmd.Flags().StringVar(&reviewComment, "comment", "", "Review text")
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewAddCmd)
}
