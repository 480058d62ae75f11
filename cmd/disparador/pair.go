package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"whatsapp-disparador/internal/service"
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Link a WhatsApp number by scanning a QR code in the terminal",
	RunE:  runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	whatsappService, err := service.NewWhatsAppService(ctx, &cfg.WhatsApp, service.NewInstanceHub(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}
	defer whatsappService.Close()

	err = whatsappService.PairQR(ctx, func(code string) {
		fmt.Fprintln(os.Stdout, "Scan this QR code with WhatsApp:")
		qrterminal.GenerateHalfBlock(code, qrterminal.L, os.Stdout)
	})
	if errors.Is(err, service.ErrAlreadyPaired) {
		fmt.Fprintln(os.Stdout, "A WhatsApp session is already stored; nothing to do.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "WhatsApp linked successfully.")
	return nil
}
