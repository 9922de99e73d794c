package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/config"
	"github.com/unilink-hq/placement-service/internal/events"
	"github.com/unilink-hq/placement-service/internal/policy"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/storage"
	"github.com/unilink-hq/placement-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	JWT config.JWTConfig

	// Global settings
	DefaultTimeout time.Duration

	// When true, the notification consumer runs in-process. Deployments
	// publishing to Kafka run the consumer elsewhere and disable this.
	RunNotificationConsumer bool
}

// ServiceManagerDeps bundles the shared dependencies every service draws from
type ServiceManagerDeps struct {
	DB         *gorm.DB
	Repo       repositories.Repository
	Logger     *slog.Logger
	Validator  *validator.Validator
	Policy     policy.AccessPolicy
	Store      storage.BlobStore
	Publisher  events.EventPublisher
	Subscriber events.EventSubscriber
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceManagerDeps
	config ServiceManagerConfig

	// Service instances
	authService         AuthService
	userService         UserService
	opportunityService  OpportunityService
	applicationService  ApplicationService
	notificationService NotificationService
	dashboardService    DashboardService

	// Lifecycle management
	initialized    bool
	shutdown       bool
	consumerCancel context.CancelFunc
	consumerDone   chan struct{}
	mu             sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceManagerDeps, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceManagerDeps, jwtConfig config.JWTConfig) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		JWT:                     jwtConfig,
		DefaultTimeout:          30 * time.Second,
		RunNotificationConsumer: true,
	})
}

// Initialize sets up all services and starts the notification consumer
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.DB, d.Logger, d.Validator, sm.config.JWT)
	sm.userService = NewUserService(d.Repo, d.DB, d.Logger, d.Validator, d.Store)
	sm.opportunityService = NewOpportunityService(d.Repo, d.DB, d.Logger, d.Validator, d.Policy)
	sm.applicationService = NewApplicationService(d.Repo, d.DB, d.Logger, d.Validator, d.Policy, d.Store, d.Publisher)
	sm.notificationService = NewNotificationService(d.Repo, d.DB, d.Logger, d.Subscriber)
	sm.dashboardService = NewDashboardService(d.Repo, d.DB, d.Logger)

	if sm.config.RunNotificationConsumer {
		consumerCtx, cancel := context.WithCancel(context.Background())
		sm.consumerCancel = cancel
		sm.consumerDone = make(chan struct{})
		go func() {
			defer close(sm.consumerDone)
			if err := sm.notificationService.Start(consumerCtx); err != nil {
				d.Logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Opportunity() OpportunityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.opportunityService
}

func (sm *serviceManager) Application() ApplicationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.applicationService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.notificationService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.dashboardService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.consumerCancel != nil {
		sm.consumerCancel()
		select {
		case <-sm.consumerDone:
		case <-ctx.Done():
			sm.deps.Logger.Warn("timed out waiting for notification consumer")
		}
	}

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down")

	return nil
}
