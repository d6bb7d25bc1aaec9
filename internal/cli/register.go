package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-archive/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Run:   runRegister,
	}

	cmd.Flags().StringP("email", "e", "", "Email (required)")
	cmd.Flags().StringP("name", "n", "", "Display name")
	cmd.Flags().StringP("password", "p", "", "Password (required)")

	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	RootCmd.AddCommand(cmd)
}

func runRegister(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	hash := sha256.Sum256([]byte(password))
	id, err := s.CreateUser(cmd.Context(), &model.User{
		Email:            email,
		Name:             name,
		PasswordHash:     hex.EncodeToString(hash[:]),
		CustomCategories: model.DefaultCategories,
		FavoriteTags:     model.DefaultTags,
	})
	if err != nil {
		exitErr("register", err)
	}

	fmt.Printf(`{"ok":true,"id":%q,"email":%q}`+"\n", id, email)
}
