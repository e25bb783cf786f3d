package main

import (
	"context"
	"fmt"

	"quote-server/src/config"
	"quote-server/src/data_source/financego"
	"quote-server/src/data_source/yahoo"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/network"
	"quote-server/src/refresher"
	"quote-server/src/storage"
	"quote-server/src/utils"
)

// -----------------------------------------------------------------------------

// setupSymbols expands schema.table.field entries against data_source.symbols_db
func setupSymbols(ctx context.Context, conf *config.Config, appLogger *logger.Logger) error {
	dbConf := conf.DataSource.SymbolsDB
	if dbConf.Driver == "" {
		return nil
	}

	store, err := storage.OpenSymbolStore(ctx, dbConf.Driver, dbConf.DSN, appLogger.Named("SymbolStore"))
	if err != nil {
		return err
	}
	defer store.Close()

	symbols, err := store.ExpandSymbols(ctx, conf.Symbols)
	if err != nil {
		return err
	}

	conf.Symbols = config.Dedupe(symbols)
	if len(conf.Symbols) == 0 {
		return fmt.Errorf("no symbols left after expanding table references")
	}
	return nil
}

// -----------------------------------------------------------------------------

// setupDataSource builds the price source selected by data_source.type
func setupDataSource(conf *config.Config, appLogger *logger.Logger) interfaces.IPriceSource {
	switch conf.DataSource.Type {
	case config.SourceFinanceGo:
		return financego.NewSource(appLogger.Named("FinanceGo"))
	default:
		netMgr := network.NewNetworkManager(conf.Network, appLogger.Named("NetworkManager"))
		return yahoo.NewYahooFinanceSource(conf.DataSource.API, netMgr, appLogger.Named("YahooFinanceSource"))
	}
}

// -----------------------------------------------------------------------------

// setupRefresher wires the refresher, with the market-hours gate when enabled
func setupRefresher(
	conf *config.Config,
	source interfaces.IPriceSource,
	store interfaces.IQuoteWriter,
	appLogger *logger.Logger,
) *refresher.Refresher {
	r := refresher.NewRefresher(
		conf.Symbols,
		conf.UpdateInterval(),
		conf.FetchTimeout(),
		source,
		store,
		appLogger.Named("Refresher"),
	)

	if conf.DataSource.MarketHoursOnly {
		r.SetMarketClock(utils.NewMarketScheduler(conf.Symbols, appLogger.Named("MarketScheduler")))
	}
	return r
}
