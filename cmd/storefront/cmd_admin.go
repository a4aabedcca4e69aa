package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Shop administration (admin accounts only)",
}

// Products

var adminProductCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
}

var adminProductListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, including hidden ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := a.api.AdminListProducts(cmd.Context(), gateway.ProductQuery{Page: adminPage, Limit: 50}, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Catalog(page))
		return nil
	},
}

var adminProductDiscountCmd = &cobra.Command{
	Use:   "discount <article> <percent>",
	Short: "Set the discount of a product (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, err := strconv.Atoi(args[1])
		if err != nil || pct < 0 || pct > 100 {
			return fmt.Errorf("%w: discount must be 0..100", domain.ErrInvalidInput)
		}
		p, err := a.api.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p.Discount = pct
		updated, err := a.api.UpdateProduct(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.ProductRow(updated))
		return nil
	},
}

var adminProductDeleteCmd = &cobra.Command{
	Use:   "delete <article>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Delete product "+args[0]+"?") {
			return nil
		}
		if err := a.api.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Product deleted"))
		return nil
	},
}

// Users

var adminUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage customer accounts",
}

var adminUserListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := a.api.AdminListUsers(cmd.Context(), adminPage, 50)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range page.Data {
			fmt.Fprintf(out, "%s  %-30s %-8s %s %s\n", u.ID, u.Email, u.Role, u.FirstName, u.LastName)
		}
		return nil
	},
}

var adminUserDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Delete user "+args[0]+"?") {
			return nil
		}
		if err := a.api.AdminDeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("User deleted"))
		return nil
	},
}

// Orders

var (
	adminPage        int
	adminOrderStatus string
	adminStatusNote  string
)

var adminOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
}

var adminOrderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := a.api.AdminListOrders(cmd.Context(), gateway.OrderQuery{Status: adminOrderStatus, Page: adminPage, Limit: 20})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Orders(page.Data))
		return nil
	},
}

var adminOrderStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move an order to the next status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[1] == domain.OrderStatusCancelled && !confirm(cmd, "Cancel order "+args[0]+"?") {
			return nil
		}
		order, err := a.api.AdminUpdateOrderStatus(cmd.Context(), args[0], domain.StatusUpdate{Status: args[1], Note: adminStatusNote})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.Order(order))
		return nil
	},
}

var adminOrderHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the status history of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := a.api.AdminOrderHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, h := range history {
			prev := "-"
			if h.PreviousStatus != nil {
				prev = *h.PreviousStatus
			}
			note := ""
			if h.Note != nil {
				note = *h.Note
			}
			fmt.Fprintf(out, "%s  %s -> %s  %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04"), prev, h.NewStatus, note)
		}
		return nil
	},
}

// Reviews

var adminReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Moderate reviews",
}

var adminReviewListCmd = &cobra.Command{
	Use:   "pending",
	Short: "List reviews waiting for moderation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		published := false
		page, err := a.api.AdminListReviews(cmd.Context(), "", &published, adminPage, 50)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range page.Data {
			fmt.Fprintf(out, "%s  %-12s %d/5  %s\n", r.ID, r.ArticleNumber, r.Rating, r.Comment)
		}
		return nil
	},
}

var adminReviewPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish a review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		published := true
		if _, err := a.api.AdminUpdateReview(cmd.Context(), args[0], domain.ReviewUpdate{IsPublished: &published}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Review published"))
		return nil
	},
}

var adminReviewDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Delete review "+args[0]+"?") {
			return nil
		}
		if err := a.api.AdminDeleteReview(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Review deleted"))
		return nil
	},
}

// Reports and files

var reportOutput string

var adminReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the products and orders workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := a.api.GenerateReport(cmd.Context())
		if err != nil {
			return err
		}
		name := reportOutput
		if name == "" {
			name = fmt.Sprintf("kinderstep-report-%s.xlsx", time.Now().Format("2006-01-02"))
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.OK("Saved "+name))
		return nil
	},
}

var adminImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Create or update products from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := a.api.UploadExcel(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, view.OK(fmt.Sprintf("%d created, %d updated", res.Created, res.Updated)))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  row %d: %s\n", e.Row, e.Message)
		}
		return nil
	},
}

var adminUploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Upload a product image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		url, err := a.api.UploadImage(cmd.Context(), filepath.Base(args[0]), mime.TypeByExtension(filepath.Ext(args[0])), f)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

func init() {
	adminCmd.PersistentFlags().IntVar(&adminPage, "page", 1, "Page")
	adminOrderListCmd.Flags().StringVar(&adminOrderStatus, "status", "", "Only orders in this status")
	adminOrderStatusCmd.Flags().StringVar(&adminStatusNote, "note", "", "Note for the history")
	adminReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file")

	adminProductCmd.AddCommand(adminProductListCmd, adminProductDiscountCmd, adminProductDeleteCmd)
	adminUserCmd.AddCommand(adminUserListCmd, adminUserDeleteCmd)
	adminOrderCmd.AddCommand(adminOrderListCmd, adminOrderStatusCmd, adminOrderHistoryCmd)
	adminReviewCmd.AddCommand(adminReviewListCmd, adminReviewPublishCmd, adminReviewDeleteCmd)
	adminCmd.AddCommand(adminProductCmd, adminUserCmd, adminOrderCmd, adminReviewCmd, adminReportCmd, adminImportCmd, adminUploadCmd)
}
