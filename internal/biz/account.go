package biz

import (
	"context"

	"github.com/yola1107/kratos/v2/log"
)

// AccountUsecase serves the getProfile request.
type AccountUsecase struct {
	wallet WalletRepo
	log    *log.Helper
}

func NewAccountUsecase(wallet WalletRepo, logger log.Logger) *AccountUsecase {
	return &AccountUsecase{wallet: wallet, log: log.NewHelper(logger)}
}

func (uc *AccountUsecase) Profile(ctx context.Context, playerID, gameID int64) (*WalletAccount, error) {
	return uc.wallet.Account(ctx, playerID, gameID)
}
